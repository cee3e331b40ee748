package service

import (
	"context"
	"fmt"
	"strings"

	"procurement-radar/types"

	"go.uber.org/zap"
)

// LotStore is the lot side of persistence the HTTP surface needs.
type LotStore interface {
	List(ctx context.Context, f types.LotFilter) ([]types.Lot, error)
	SetReviewStatus(ctx context.Context, lotNumber string, status types.ReviewStatus) (*types.Lot, error)
}

// MailExtractor turns a forwarded tender e-mail into a raw lot.
type MailExtractor interface {
	ExtractLot(ctx context.Context, content string) (*types.RawLot, error)
}

// BatchProcessor ingests, indexes and notifies for an explicit batch.
type BatchProcessor interface {
	Process(ctx context.Context, raws []types.RawLot) *RunReport
}

// LotService serves lot listing, search, review and ad-hoc intake.
type LotService struct {
	lots      LotStore
	index     LotIndex
	analyzer  QueryAnalyzer
	extractor MailExtractor
	pipeline  BatchProcessor
	log       *zap.Logger
}

// NewLotService wires the lot operations. index may be nil, which disables
// keyword search.
func NewLotService(lots LotStore, index LotIndex, analyzer QueryAnalyzer, extractor MailExtractor, pipeline BatchProcessor, log *zap.Logger) *LotService {
	return &LotService{
		lots:      lots,
		index:     index,
		analyzer:  analyzer,
		extractor: extractor,
		pipeline:  pipeline,
		log:       log,
	}
}

// SetReviewStatus is the only way review_status changes.
func (s *LotService) SetReviewStatus(ctx context.Context, lotNumber string, status types.ReviewStatus) (*types.Lot, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown review status %q", ErrInvalid, status)
	}
	lot, err := s.lots.SetReviewStatus(ctx, lotNumber, status)
	if err != nil {
		return nil, fmt.Errorf("set review status: %w", err)
	}
	if lot == nil {
		return nil, fmt.Errorf("lot %s: %w", lotNumber, ErrNotFound)
	}
	s.log.Info("review status changed", zap.String("lot_number", lotNumber), zap.String("status", string(status)))
	return lot, nil
}

// Import ingests hand-supplied lots. Missing source becomes manual and a
// missing customer takes defaultCustomer.
func (s *LotService) Import(ctx context.Context, raws []types.RawLot, defaultCustomer string) (*RunReport, error) {
	if len(raws) == 0 {
		return nil, fmt.Errorf("%w: no lots to import", ErrInvalid)
	}
	defaultCustomer = strings.TrimSpace(defaultCustomer)
	for i := range raws {
		if raws[i].Source == "" {
			raws[i].Source = types.SourceManual
		}
		if strings.TrimSpace(raws[i].Customer) == "" {
			raws[i].Customer = defaultCustomer
		}
	}
	return s.pipeline.Process(ctx, raws), nil
}

// Extract reads a lot out of forwarded e-mail text and ingests it.
func (s *LotService) Extract(ctx context.Context, content string) (*RunReport, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalid)
	}
	raw, err := s.extractor.ExtractLot(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("extract lot: %w", err)
	}
	raw.Source = types.SourceMailed
	return s.pipeline.Process(ctx, []types.RawLot{*raw}), nil
}
