package service

import (
	"context"
	"sync"
	"time"

	"procurement-radar/logic/ingestion"
	"procurement-radar/logic/notify"
	"procurement-radar/types"

	"go.uber.org/zap"
)

// Ingester persists raw lots and reports per-record outcomes.
type Ingester interface {
	Ingest(ctx context.Context, raws []types.RawLot) []ingestion.Result
}

// PendingAnalyzer rates proposals that have not been analysed yet.
type PendingAnalyzer interface {
	AnalyzePending(ctx context.Context, limit int) int
}

// RunReport summarises one pipeline pass.
type RunReport struct {
	Fetched  int             `json:"fetched"`
	Created  int             `json:"created"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Outcomes []RecordOutcome `json:"outcomes,omitempty"`
	NewLots  []types.Lot     `json:"new_lots,omitempty"`
	Notified notify.Report   `json:"notified"`
	Analyzed int             `json:"analyzed"`
	Duration time.Duration   `json:"duration"`
}

// RecordOutcome is the wire form of one ingestion result.
type RecordOutcome struct {
	LotNumber string        `json:"lot_number"`
	Outcome   types.Outcome `json:"outcome"`
	Error     string        `json:"error,omitempty"`
}

// PipelineService runs source → ingest → index → fan-out.
type PipelineService struct {
	source    Source
	ingestor  Ingester
	index     LotIndex
	notifier  Notifier
	proposals PendingAnalyzer
	log       *zap.Logger

	running sync.Mutex
}

// NewPipelineService wires the pipeline. index and proposals may be nil.
func NewPipelineService(source Source, ingestor Ingester, index LotIndex, notifier Notifier, proposals PendingAnalyzer, log *zap.Logger) *PipelineService {
	return &PipelineService{
		source:    source,
		ingestor:  ingestor,
		index:     index,
		notifier:  notifier,
		proposals: proposals,
		log:       log,
	}
}

// analyzeBatch caps proposal analysis per run.
const analyzeBatch = 20

// RunOnce pulls the sources and processes whatever they return. Runs never
// overlap; a second caller gets ErrBusy.
func (s *PipelineService) RunOnce(ctx context.Context) (*RunReport, error) {
	if !s.running.TryLock() {
		return nil, ErrBusy
	}
	defer s.running.Unlock()

	start := time.Now()
	raws := s.source.Fetch(ctx)
	rep := s.process(ctx, raws)
	if s.proposals != nil {
		rep.Analyzed = s.proposals.AnalyzePending(ctx, analyzeBatch)
	}
	rep.Duration = time.Since(start)

	s.log.Info("pipeline run finished",
		zap.Int("fetched", rep.Fetched),
		zap.Int("created", rep.Created),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed),
		zap.Int("sent", rep.Notified.Sent),
		zap.Int("analyzed", rep.Analyzed),
		zap.Duration("duration", rep.Duration))
	return rep, nil
}

// Process ingests an explicit batch, as imports and mailed lots do.
func (s *PipelineService) Process(ctx context.Context, raws []types.RawLot) *RunReport {
	start := time.Now()
	rep := s.process(ctx, raws)
	rep.Duration = time.Since(start)
	return rep
}

func (s *PipelineService) process(ctx context.Context, raws []types.RawLot) *RunReport {
	rep := &RunReport{Fetched: len(raws)}
	if len(raws) == 0 {
		return rep
	}

	results := s.ingestor.Ingest(ctx, raws)
	counts := ingestion.Counts(results)
	rep.Created = counts[types.OutcomeCreated]
	rep.Skipped = counts[types.OutcomeSkipped]
	rep.Failed = counts[types.OutcomeFailed]
	for _, r := range results {
		o := RecordOutcome{LotNumber: r.LotNumber, Outcome: r.Outcome}
		if r.Err != nil {
			o.Error = r.Err.Error()
		}
		rep.Outcomes = append(rep.Outcomes, o)
	}

	created := ingestion.Created(results)
	rep.NewLots = created
	if len(created) == 0 {
		return rep
	}

	if s.index != nil {
		if err := s.index.IndexLots(ctx, created); err != nil {
			s.log.Warn("index new lots failed", zap.Int("lots", len(created)), zap.Error(err))
		}
	}
	rep.Notified = s.notifier.Notify(ctx, created)
	return rep
}
