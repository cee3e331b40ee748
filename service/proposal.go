package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"procurement-radar/logic/scoring"
	"procurement-radar/types"

	"go.uber.org/zap"
)

// ProposalStore persists commercial proposals.
type ProposalStore interface {
	Create(ctx context.Context, p *types.Proposal) error
	Get(ctx context.Context, id string) (*types.Proposal, error)
	ListByLot(ctx context.Context, lotID string) ([]types.Proposal, error)
	ListUnanalyzed(ctx context.Context, limit int) ([]types.Proposal, error)
	SaveAnalysis(ctx context.Context, p *types.Proposal) error
}

// LotLookup resolves lots by their public number.
type LotLookup interface {
	GetByLotNumber(ctx context.Context, lotNumber string) (*types.Lot, error)
}

// ProposalService registers supplier proposals, rates suppliers and ranks
// proposals per lot.
type ProposalService struct {
	proposals ProposalStore
	lots      LotLookup
	assessor  scoring.Assessor
	log       *zap.Logger
	now       func() time.Time
}

func NewProposalService(proposals ProposalStore, lots LotLookup, assessor scoring.Assessor, log *zap.Logger) *ProposalService {
	return &ProposalService{proposals: proposals, lots: lots, assessor: assessor, log: log, now: time.Now}
}

// Create validates and stores a proposal. Its integral rating is computed
// right away with a neutral supplier rating; Analyze refines it later.
func (s *ProposalService) Create(ctx context.Context, req types.CreateProposalRequest) (*types.Proposal, error) {
	name := strings.TrimSpace(req.SupplierName)
	if name == "" {
		return nil, fmt.Errorf("%w: supplier name is required", ErrInvalid)
	}
	if req.ProductPrice.IsNegative() {
		return nil, fmt.Errorf("%w: product price must be non-negative", ErrInvalid)
	}
	if req.DeliveryCost != nil && req.DeliveryCost.IsNegative() {
		return nil, fmt.Errorf("%w: delivery cost must be non-negative", ErrInvalid)
	}
	if req.ItemsCount != nil && *req.ItemsCount < 0 {
		return nil, fmt.Errorf("%w: items count must be non-negative", ErrInvalid)
	}

	p := &types.Proposal{
		SupplierName:    name,
		SupplierTaxID:   strings.TrimSpace(req.SupplierTaxID),
		ProductPrice:    req.ProductPrice,
		DeliveryCost:    req.DeliveryCost,
		OtherConditions: req.OtherConditions,
		ItemsCount:      req.ItemsCount,
		CreatedBy:       req.CreatedBy,
	}
	if n := strings.TrimSpace(req.LotNumber); n != "" {
		lot, err := s.lots.GetByLotNumber(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("lookup lot %s: %w", n, err)
		}
		if lot == nil {
			return nil, fmt.Errorf("lot %s: %w", n, ErrNotFound)
		}
		p.LotID = &lot.ID
	}

	rating := scoring.Score(scoring.InputOf(p))
	p.IntegralRating = &rating

	if err := s.proposals.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("save proposal: %w", err)
	}
	s.log.Info("proposal created", zap.String("id", p.ID), zap.String("supplier", p.SupplierName))
	return p, nil
}

// Analyze rates the supplier and recomputes the integral rating.
func (s *ProposalService) Analyze(ctx context.Context, id string) (*types.Proposal, error) {
	p, err := s.proposals.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load proposal: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("proposal %s: %w", id, ErrNotFound)
	}
	if err := s.analyze(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProposalService) analyze(ctx context.Context, p *types.Proposal) error {
	a := s.assessor.Assess(ctx, p.SupplierName, p.SupplierTaxID)
	p.SupplierRating = &a.Rating
	p.SupplierReliabilityInfo = a.Summary

	rating := scoring.Score(scoring.InputOf(p))
	p.IntegralRating = &rating
	now := s.now()
	p.AnalyzedAt = &now

	if err := s.proposals.SaveAnalysis(ctx, p); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// AnalyzePending analyses up to limit proposals without a supplier rating and
// returns how many were saved.
func (s *ProposalService) AnalyzePending(ctx context.Context, limit int) int {
	pending, err := s.proposals.ListUnanalyzed(ctx, limit)
	if err != nil {
		s.log.Error("list unanalyzed proposals failed", zap.Error(err))
		return 0
	}
	done := 0
	for i := range pending {
		if ctx.Err() != nil {
			break
		}
		if err := s.analyze(ctx, &pending[i]); err != nil {
			s.log.Warn("proposal analysis failed", zap.String("id", pending[i].ID), zap.Error(err))
			continue
		}
		done++
	}
	if len(pending) > 0 {
		s.log.Info("pending proposals analysed", zap.Int("done", done), zap.Int("pending", len(pending)))
	}
	return done
}

// ListRanked returns a lot's proposals rescored against each other, best
// first.
func (s *ProposalService) ListRanked(ctx context.Context, lotNumber string) ([]types.Proposal, error) {
	lot, err := s.lots.GetByLotNumber(ctx, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("lookup lot %s: %w", lotNumber, err)
	}
	if lot == nil {
		return nil, fmt.Errorf("lot %s: %w", lotNumber, ErrNotFound)
	}
	proposals, err := s.proposals.ListByLot(ctx, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return scoring.Rank(proposals), nil
}
