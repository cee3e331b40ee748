package service

import (
	"context"
	"errors"

	"procurement-radar/logic/notify"
	"procurement-radar/types"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid argument")
	// ErrBusy is returned when a pipeline run is already in progress.
	ErrBusy = errors.New("run already in progress")
)

// Source yields raw lots from the outside world. A failing source yields an
// empty batch instead of an error.
type Source interface {
	Fetch(ctx context.Context) []types.RawLot
}

// SubscriberStore is the subscriber side of persistence.
type SubscriberStore interface {
	Get(ctx context.Context, id int64) (*types.Subscriber, error)
	GetOrCreatePreference(ctx context.Context, subscriberID int64) (*types.Preference, error)
	UpdatePreference(ctx context.Context, subscriberID int64, upd types.PreferenceUpdate) (*types.Preference, error)
}

// LotIndex is the full-text search index over lots.
type LotIndex interface {
	IndexLots(ctx context.Context, lots []types.Lot) error
	DeleteByLotNumbers(ctx context.Context, lotNumbers []string) error
	SearchLotNumbers(ctx context.Context, keywords []string, limit int) ([]string, error)
}

// Notifier delivers digests for a batch of new lots.
type Notifier interface {
	Notify(ctx context.Context, lots []types.Lot) notify.Report
}
