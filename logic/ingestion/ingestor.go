package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-radar/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMissingLotNumber = errors.New("lot_number is required")
	ErrNegativeBudget   = errors.New("budget must not be negative")
	ErrMissingDeadline  = errors.New("deadline is required")
	ErrUnknownSource    = errors.New("unknown lot source")
	ErrUnknownStatus    = errors.New("unknown lot status")
)

// LotStore is the part of the lot repository the ingestor needs.
type LotStore interface {
	GetByLotNumber(ctx context.Context, lotNumber string) (*types.Lot, error)
	// Create returns false when a lot with the same number already exists.
	Create(ctx context.Context, lot *types.Lot) (bool, error)
	SetDocumentation(ctx context.Context, lotNumber, text string) error
}

// DocumentFetcher turns a documentation URL into text.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Result is the per-record outcome of Ingest. Lot is set for created records,
// Err for failed ones.
type Result struct {
	LotNumber string
	Outcome   types.Outcome
	Lot       *types.Lot
	Err       error
}

// Ingestor persists raw lots, skipping numbers that already exist.
type Ingestor struct {
	store       LotStore
	docs        DocumentFetcher
	concurrency int
	callTimeout time.Duration
	log         *zap.Logger
}

// NewIngestor builds an ingestor. docs may be nil to skip documentation fetch.
func NewIngestor(store LotStore, docs DocumentFetcher, concurrency int, callTimeout time.Duration, log *zap.Logger) *Ingestor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Ingestor{
		store:       store,
		docs:        docs,
		concurrency: concurrency,
		callTimeout: callTimeout,
		log:         log,
	}
}

// Ingest processes raws sequentially in order and returns one Result per
// record. A failing record never stops the batch. Documentation for created
// lots is fetched after every row of the batch exists.
func (i *Ingestor) Ingest(ctx context.Context, raws []types.RawLot) []Result {
	results := make([]Result, 0, len(raws))
	for idx := range raws {
		res := i.ingestOne(ctx, &raws[idx])
		switch res.Outcome {
		case types.OutcomeFailed:
			i.log.Warn("lot ingestion failed", zap.String("lot_number", res.LotNumber), zap.Error(res.Err))
		case types.OutcomeSkipped:
			i.log.Debug("lot already exists", zap.String("lot_number", res.LotNumber))
		}
		results = append(results, res)
	}

	if i.docs != nil {
		i.attachDocumentation(ctx, results)
	}

	counts := Counts(results)
	i.log.Info("ingestion finished",
		zap.Int("created", counts[types.OutcomeCreated]),
		zap.Int("skipped", counts[types.OutcomeSkipped]),
		zap.Int("failed", counts[types.OutcomeFailed]))
	return results
}

func (i *Ingestor) ingestOne(ctx context.Context, raw *types.RawLot) Result {
	number := strings.TrimSpace(raw.LotNumber)
	res := Result{LotNumber: number}
	if number == "" {
		res.Outcome, res.Err = types.OutcomeFailed, ErrMissingLotNumber
		return res
	}
	if err := validate(raw); err != nil {
		res.Outcome, res.Err = types.OutcomeFailed, err
		return res
	}

	existing, err := i.store.GetByLotNumber(ctx, number)
	if err != nil {
		res.Outcome, res.Err = types.OutcomeFailed, fmt.Errorf("lookup: %w", err)
		return res
	}
	if existing != nil {
		res.Outcome = types.OutcomeSkipped
		return res
	}

	lot := NewLot(raw)
	created, err := i.store.Create(ctx, lot)
	if err != nil {
		res.Outcome, res.Err = types.OutcomeFailed, fmt.Errorf("create: %w", err)
		return res
	}
	if !created {
		res.Outcome = types.OutcomeSkipped
		return res
	}
	res.Outcome, res.Lot = types.OutcomeCreated, lot
	return res
}

// validate rejects raw records that would be stored with a value the lot
// table does not allow. Empty source and status get defaults in NewLot.
func validate(raw *types.RawLot) error {
	if raw.Budget.IsNegative() {
		return ErrNegativeBudget
	}
	// a zero deadline would be reaped on the next cleanup and re-created on the next poll
	if raw.Deadline.IsZero() {
		return ErrMissingDeadline
	}
	if raw.Source != "" && !raw.Source.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSource, raw.Source)
	}
	if raw.Status != "" && !raw.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, raw.Status)
	}
	return nil
}

// NewLot builds a fresh lot from a raw record with the ingestion defaults.
func NewLot(raw *types.RawLot) *types.Lot {
	lot := &types.Lot{
		LotNumber:    strings.TrimSpace(raw.LotNumber),
		PlatformName: raw.PlatformName,
		Title:        strings.TrimSpace(raw.Title),
		Description:  raw.Description,
		Budget:       raw.Budget,
		Deadline:     raw.Deadline,
		Nomenclature: raw.Nomenclature,
		Status:       raw.Status,
		ReviewStatus: types.ReviewNotViewed,
		Source:       raw.Source,
		URL:          strings.TrimSpace(raw.URL),
	}
	if c := strings.TrimSpace(raw.Customer); c != "" {
		lot.Customer = &c
	}
	if lot.Status == "" {
		lot.Status = types.LotStatusActive
	}
	if lot.Source == "" {
		lot.Source = types.SourceScraped
	}
	return lot
}

func (i *Ingestor) attachDocumentation(ctx context.Context, results []Result) {
	var g errgroup.Group
	g.SetLimit(i.concurrency)

	for idx := range results {
		lot := results[idx].Lot
		if lot == nil || lot.URL == "" {
			continue
		}
		g.Go(func() error {
			i.fetchOne(ctx, lot)
			return nil
		})
	}
	_ = g.Wait()
}

func (i *Ingestor) fetchOne(ctx context.Context, lot *types.Lot) {
	callCtx := ctx
	if i.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, i.callTimeout)
		defer cancel()
	}

	text, err := i.docs.Fetch(callCtx, lot.URL)
	if err != nil {
		i.log.Warn("documentation fetch failed",
			zap.String("lot_number", lot.LotNumber), zap.String("url", lot.URL), zap.Error(err))
		return
	}
	if text == "" {
		return
	}
	if err := i.store.SetDocumentation(ctx, lot.LotNumber, text); err != nil {
		i.log.Warn("save documentation failed", zap.String("lot_number", lot.LotNumber), zap.Error(err))
		return
	}
	lot.DocumentationText = text
}

// Created returns the lots created by an Ingest call, in input order.
func Created(results []Result) []types.Lot {
	var lots []types.Lot
	for _, r := range results {
		if r.Outcome == types.OutcomeCreated && r.Lot != nil {
			lots = append(lots, *r.Lot)
		}
	}
	return lots
}

// Counts tallies results by outcome.
func Counts(results []Result) map[types.Outcome]int {
	counts := make(map[types.Outcome]int, 3)
	for _, r := range results {
		counts[r.Outcome]++
	}
	return counts
}
