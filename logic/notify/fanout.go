package notify

import (
	"context"
	"strings"
	"time"

	"procurement-radar/types"

	"go.uber.org/zap"
)

// SubscriberStore is what the fan-out reads about subscribers.
type SubscriberStore interface {
	ListActive(ctx context.Context) ([]types.Subscriber, error)
	GetOrCreatePreference(ctx context.Context, subscriberID int64) (*types.Preference, error)
}

// LotMatcher decides whether a lot is interesting for a preference.
type LotMatcher interface {
	Matches(ctx context.Context, lot *types.Lot, pref *types.Preference) bool
}

// Digest is the set of lots one recipient receives in one run.
type Digest struct {
	Recipient string
	Lots      []types.Lot
}

// Plan is the outcome of matching a batch against subscribers.
type Plan struct {
	Digests  []Digest
	Fallback bool
}

// Report counts delivered and failed digests.
type Report struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// FanOut groups new lots per recipient and sends one digest each.
type FanOut struct {
	subscribers SubscriberStore
	matcher     LotMatcher
	sender      Sender
	fallback    []string
	callTimeout time.Duration
	log         *zap.Logger
}

func NewFanOut(subscribers SubscriberStore, matcher LotMatcher, sender Sender, fallback []string, callTimeout time.Duration, log *zap.Logger) *FanOut {
	return &FanOut{
		subscribers: subscribers,
		matcher:     matcher,
		sender:      sender,
		fallback:    fallback,
		callTimeout: callTimeout,
		log:         log,
	}
}

// Plan matches lots against every eligible subscriber. When nobody gets
// anything, the fallback recipients receive the whole batch.
func (f *FanOut) Plan(ctx context.Context, lots []types.Lot) Plan {
	if len(lots) == 0 {
		return Plan{}
	}

	var plan Plan
	index := map[string]int{}
	seen := map[string]map[string]bool{}

	subs, err := f.subscribers.ListActive(ctx)
	if err != nil {
		f.log.Error("list subscribers failed", zap.Error(err))
	}
	for i := range subs {
		sub := &subs[i]
		email := strings.TrimSpace(sub.Email())
		if !sub.IsActive || !types.CanReceiveAlerts(sub.Role) || email == "" {
			continue
		}
		pref, err := f.subscribers.GetOrCreatePreference(ctx, sub.ID)
		if err != nil {
			f.log.Warn("load preference failed", zap.Int64("subscriber_id", sub.ID), zap.Error(err))
			continue
		}
		if !pref.NotifyEnabled {
			continue
		}

		key := strings.ToLower(email)
		for j := range lots {
			lot := &lots[j]
			if !f.matcher.Matches(ctx, lot, pref) {
				continue
			}
			idx, ok := index[key]
			if !ok {
				idx = len(plan.Digests)
				index[key] = idx
				seen[key] = map[string]bool{}
				plan.Digests = append(plan.Digests, Digest{Recipient: email})
			}
			if seen[key][lot.LotNumber] {
				continue
			}
			seen[key][lot.LotNumber] = true
			plan.Digests[idx].Lots = append(plan.Digests[idx].Lots, *lot)
		}
	}

	if len(plan.Digests) > 0 {
		return plan
	}

	plan.Fallback = true
	added := map[string]bool{}
	for _, r := range f.fallback {
		r = strings.TrimSpace(r)
		if r == "" || added[strings.ToLower(r)] {
			continue
		}
		added[strings.ToLower(r)] = true
		plan.Digests = append(plan.Digests, Digest{Recipient: r, Lots: lots})
	}
	if len(plan.Digests) == 0 {
		f.log.Warn("no subscriber matched and no fallback recipients configured", zap.Int("lots", len(lots)))
	}
	return plan
}

// Deliver sends every digest once. Failures are logged and counted; they do
// not stop the remaining recipients and are not retried.
func (f *FanOut) Deliver(ctx context.Context, plan Plan) Report {
	var rep Report
	for _, d := range plan.Digests {
		if err := f.deliverOne(ctx, d); err != nil {
			rep.Failed++
			f.log.Warn("digest delivery failed", zap.String("recipient", d.Recipient), zap.Error(err))
			continue
		}
		rep.Sent++
	}
	f.log.Info("digests delivered",
		zap.Int("sent", rep.Sent), zap.Int("failed", rep.Failed), zap.Bool("fallback", plan.Fallback))
	return rep
}

func (f *FanOut) deliverOne(ctx context.Context, d Digest) error {
	body, err := RenderDigest(d.Lots)
	if err != nil {
		return err
	}
	if f.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.callTimeout)
		defer cancel()
	}
	return f.sender.Send(ctx, Subject(len(d.Lots)), body, []string{d.Recipient})
}

// Notify plans and delivers in one step.
func (f *FanOut) Notify(ctx context.Context, lots []types.Lot) Report {
	return f.Deliver(ctx, f.Plan(ctx, lots))
}
