package job

import (
	"context"
	"errors"
	"fmt"

	"procurement-radar/service"
	"procurement-radar/vars"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pipeline is the ingestion run triggered on every poll.
type Pipeline interface {
	RunOnce(ctx context.Context) (*service.RunReport, error)
}

// Reaper is the daily expiry cleanup.
type Reaper interface {
	Cleanup(ctx context.Context, graceDays int) (int64, error)
}

// Scheduler owns the two periodic jobs. Neither job ever overlaps itself.
type Scheduler struct {
	c        *cron.Cron
	pipeline Pipeline
	reaper   Reaper
	grace    int
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(cfg vars.PipelineConfig, pipeline Pipeline, reaper Reaper, log *zap.Logger) (*Scheduler, error) {
	if cfg.PollMinutes <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %d minutes", cfg.PollMinutes)
	}
	cl := cronLogger{log.Sugar()}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		c:        c,
		pipeline: pipeline,
		reaper:   reaper,
		grace:    cfg.GraceDays,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}

	if _, err := c.AddFunc(fmt.Sprintf("@every %dm", cfg.PollMinutes), s.runIngest); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule ingestion: %w", err)
	}
	if _, err := c.AddFunc(cfg.CleanupSpec, s.runCleanup); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule cleanup %q: %w", cfg.CleanupSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.c.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.c.Entries())))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.c.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runIngest() {
	rep, err := s.pipeline.RunOnce(s.ctx)
	if errors.Is(err, service.ErrBusy) {
		s.log.Info("[Cron] ingestion skipped, previous run still active")
		return
	}
	if err != nil {
		s.log.Error("[Cron] ingestion failed", zap.Error(err))
		return
	}
	s.log.Info("[Cron] ingestion done", zap.Int("created", rep.Created), zap.Int("sent", rep.Notified.Sent))
}

func (s *Scheduler) runCleanup() {
	n, err := s.reaper.Cleanup(s.ctx, s.grace)
	if err != nil {
		s.log.Error("[Cron] cleanup failed", zap.Error(err))
		return
	}
	s.log.Info("[Cron] expired lots removed", zap.Int64("count", n))
}

// cronLogger routes cron's own messages to zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
