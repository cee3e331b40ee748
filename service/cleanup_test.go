package service

import (
	"context"
	"testing"
	"time"

	"procurement-radar/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCleanupHonoursGraceDays(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	store := newMemLots(
		types.Lot{LotNumber: "old", Deadline: now.AddDate(0, 0, -10)},
		types.Lot{LotNumber: "edge", Deadline: now.AddDate(0, 0, -3)},
		types.Lot{LotNumber: "recent", Deadline: now.AddDate(0, 0, -1)},
		types.Lot{LotNumber: "future", Deadline: now.AddDate(0, 0, 5)},
	)
	idx := &fakeIndex{}
	svc := NewCleanupService(store, idx, zap.NewNop())
	svc.now = func() time.Time { return now }

	n, err := svc.Cleanup(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, []string{"old"}, idx.deleted)

	l, _ := store.GetByLotNumber(context.Background(), "edge")
	assert.NotNil(t, l)

	n, err = svc.Cleanup(context.Background(), 3)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCleanupZeroGrace(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	store := newMemLots(
		types.Lot{LotNumber: "passed", Deadline: now.Add(-time.Minute)},
		types.Lot{LotNumber: "live", Deadline: now.Add(time.Minute)},
	)
	svc := NewCleanupService(store, nil, zap.NewNop())
	svc.now = func() time.Time { return now }

	n, err := svc.Cleanup(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCleanupErrors(t *testing.T) {
	store := newMemLots()
	svc := NewCleanupService(store, nil, zap.NewNop())

	_, err := svc.Cleanup(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalid)

	store.err = errBoom
	_, err = svc.Cleanup(context.Background(), 1)
	assert.ErrorIs(t, err, errBoom)
}
