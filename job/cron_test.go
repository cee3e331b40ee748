package job

import (
	"context"
	"errors"
	"testing"

	"procurement-radar/service"
	"procurement-radar/vars"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakePipeline struct {
	runs int
	err  error
}

func (f *fakePipeline) RunOnce(ctx context.Context) (*service.RunReport, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return &service.RunReport{Created: 2}, nil
}

type fakeReaper struct {
	grace int
	err   error
}

func (f *fakeReaper) Cleanup(ctx context.Context, graceDays int) (int64, error) {
	f.grace = graceDays
	return 3, f.err
}

func config() vars.PipelineConfig {
	return vars.PipelineConfig{PollMinutes: 30, CleanupSpec: "0 0 3 * * *", GraceDays: 2}
}

func TestNewSchedulerRegistersJobs(t *testing.T) {
	s, err := NewScheduler(config(), &fakePipeline{}, &fakeReaper{}, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, s.c.Entries(), 2)
	s.Start()
	s.Stop()
}

func TestNewSchedulerRejectsBadConfig(t *testing.T) {
	cfg := config()
	cfg.CleanupSpec = "every night"
	_, err := NewScheduler(cfg, &fakePipeline{}, &fakeReaper{}, zap.NewNop())
	assert.Error(t, err)

	cfg = config()
	cfg.PollMinutes = 0
	_, err = NewScheduler(cfg, &fakePipeline{}, &fakeReaper{}, zap.NewNop())
	assert.Error(t, err)
}

func TestJobsCallServices(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &fakePipeline{}
	r := &fakeReaper{}
	s, err := NewScheduler(config(), p, r, zap.New(core))
	require.NoError(t, err)

	s.runIngest()
	s.runCleanup()
	assert.Equal(t, 1, p.runs)
	assert.Equal(t, 2, r.grace)
	assert.Equal(t, 1, logs.FilterMessage("[Cron] ingestion done").Len())
	assert.Equal(t, 1, logs.FilterMessage("[Cron] expired lots removed").Len())

	p.err = service.ErrBusy
	s.runIngest()
	assert.Equal(t, 1, logs.FilterMessage("[Cron] ingestion skipped, previous run still active").Len())

	p.err = errors.New("db down")
	r.err = errors.New("db down")
	s.runIngest()
	s.runCleanup()
	assert.Equal(t, 1, logs.FilterMessage("[Cron] ingestion failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("[Cron] cleanup failed").Len())
}
