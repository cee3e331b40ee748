package service

import (
	"context"
	"fmt"
	"strings"

	"procurement-radar/types"
)

// PreferenceService reads and edits subscriber alert preferences.
type PreferenceService struct {
	subs SubscriberStore
}

func NewPreferenceService(subs SubscriberStore) *PreferenceService {
	return &PreferenceService{subs: subs}
}

func (s *PreferenceService) Get(ctx context.Context, subscriberID int64) (*types.Preference, error) {
	if err := s.requireSubscriber(ctx, subscriberID); err != nil {
		return nil, err
	}
	return s.subs.GetOrCreatePreference(ctx, subscriberID)
}

// Update applies a partial change. Bounds must be non-negative and ordered
// once the change is applied.
func (s *PreferenceService) Update(ctx context.Context, subscriberID int64, upd types.PreferenceUpdate) (*types.Preference, error) {
	if err := s.requireSubscriber(ctx, subscriberID); err != nil {
		return nil, err
	}
	if upd.BudgetMin != nil && upd.BudgetMin.IsNegative() {
		return nil, fmt.Errorf("%w: budget_min must be non-negative", ErrInvalid)
	}
	if upd.BudgetMax != nil && upd.BudgetMax.IsNegative() {
		return nil, fmt.Errorf("%w: budget_max must be non-negative", ErrInvalid)
	}

	cur, err := s.subs.GetOrCreatePreference(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("load preference: %w", err)
	}
	lo, hi := cur.BudgetMin, cur.BudgetMax
	if upd.ClearBudgetMin {
		lo = nil
	} else if upd.BudgetMin != nil {
		lo = upd.BudgetMin
	}
	if upd.ClearBudgetMax {
		hi = nil
	} else if upd.BudgetMax != nil {
		hi = upd.BudgetMax
	}
	if lo != nil && hi != nil && lo.GreaterThan(*hi) {
		return nil, fmt.Errorf("%w: budget_min exceeds budget_max", ErrInvalid)
	}

	if upd.Customers != nil {
		cleaned := cleanList(*upd.Customers)
		upd.Customers = &cleaned
	}
	if upd.Nomenclature != nil {
		cleaned := cleanList(*upd.Nomenclature)
		upd.Nomenclature = &cleaned
	}
	return s.subs.UpdatePreference(ctx, subscriberID, upd)
}

func (s *PreferenceService) SetNotify(ctx context.Context, subscriberID int64, enabled bool) (*types.Preference, error) {
	if err := s.requireSubscriber(ctx, subscriberID); err != nil {
		return nil, err
	}
	return s.subs.UpdatePreference(ctx, subscriberID, types.PreferenceUpdate{NotifyEnabled: &enabled})
}

func (s *PreferenceService) requireSubscriber(ctx context.Context, id int64) error {
	sub, err := s.subs.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load subscriber: %w", err)
	}
	if sub == nil {
		return fmt.Errorf("subscriber %d: %w", id, ErrNotFound)
	}
	return nil
}

// cleanList trims entries and drops blanks and duplicates.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
