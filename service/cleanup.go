package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LotReaper deletes lots past their deadline.
type LotReaper interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error)
}

// CleanupService removes lots whose deadline passed more than graceDays ago.
type CleanupService struct {
	lots  LotReaper
	index LotIndex
	log   *zap.Logger
	now   func() time.Time
}

// NewCleanupService builds the reaper. index may be nil.
func NewCleanupService(lots LotReaper, index LotIndex, log *zap.Logger) *CleanupService {
	return &CleanupService{lots: lots, index: index, log: log, now: time.Now}
}

// Cleanup deletes lots with deadline < now - graceDays and returns how many
// rows went away. Running it twice in a row deletes nothing the second time.
func (s *CleanupService) Cleanup(ctx context.Context, graceDays int) (int64, error) {
	if graceDays < 0 {
		return 0, fmt.Errorf("%w: grace days must be non-negative", ErrInvalid)
	}
	cutoff := s.now().AddDate(0, 0, -graceDays)

	deleted, err := s.lots.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired lots: %w", err)
	}
	s.log.Info("expired lots removed", zap.Int("count", len(deleted)), zap.Time("cutoff", cutoff))

	if len(deleted) > 0 && s.index != nil {
		if err := s.index.DeleteByLotNumbers(ctx, deleted); err != nil {
			s.log.Warn("remove expired lots from index failed", zap.Error(err))
		}
	}
	return int64(len(deleted)), nil
}
