package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"procurement-radar/logic/ingestion"
	"procurement-radar/logic/notify"
	"procurement-radar/logic/scoring"
	"procurement-radar/types"
)

type fakeSource struct {
	lots    []types.RawLot
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeSource) Fetch(ctx context.Context) []types.RawLot {
	if f.block != nil {
		close(f.entered)
		<-f.block
		f.block = nil
	}
	return f.lots
}

// memLots is an in-memory lot table keyed by lot number.
type memLots struct {
	mu   sync.Mutex
	rows map[string]*types.Lot
	err  error
}

func newMemLots(lots ...types.Lot) *memLots {
	m := &memLots{rows: map[string]*types.Lot{}}
	for i := range lots {
		l := lots[i]
		if l.ID == "" {
			l.ID = "id-" + l.LotNumber
		}
		m.rows[l.LotNumber] = &l
	}
	return m
}

func (m *memLots) GetByLotNumber(ctx context.Context, n string) (*types.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.rows[n]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *memLots) Create(ctx context.Context, l *types.Lot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[l.LotNumber]; ok {
		return false, nil
	}
	l.ID = "id-" + l.LotNumber
	cp := *l
	m.rows[l.LotNumber] = &cp
	return true, nil
}

func (m *memLots) SetDocumentation(ctx context.Context, n, text string) error { return nil }

func (m *memLots) SetReviewStatus(ctx context.Context, n string, s types.ReviewStatus) (*types.Lot, error) {
	m.mu.Lock()
	l, ok := m.rows[n]
	if ok {
		l.ReviewStatus = s
	}
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return m.GetByLotNumber(ctx, n)
}

func (m *memLots) List(ctx context.Context, f types.LotFilter) ([]types.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Lot
	for _, l := range m.rows {
		if len(f.LotNumbers) > 0 && !contains(f.LotNumbers, l.LotNumber) {
			continue
		}
		if len(f.Customers) > 0 && !contains(f.Customers, l.CustomerName()) {
			continue
		}
		if f.BudgetMin != nil && l.Budget.LessThan(*f.BudgetMin) {
			continue
		}
		if f.BudgetMax != nil && l.Budget.GreaterThan(*f.BudgetMax) {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (m *memLots) DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var deleted []string
	for n, l := range m.rows {
		if l.Deadline.Before(cutoff) {
			deleted = append(deleted, n)
			delete(m.rows, n)
		}
	}
	return deleted, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

type fakeIndex struct {
	indexed []string
	deleted []string
	hits    []string
	query   []string
	err     error
}

func (f *fakeIndex) IndexLots(ctx context.Context, lots []types.Lot) error {
	for _, l := range lots {
		f.indexed = append(f.indexed, l.LotNumber)
	}
	return f.err
}

func (f *fakeIndex) DeleteByLotNumbers(ctx context.Context, numbers []string) error {
	f.deleted = append(f.deleted, numbers...)
	return f.err
}

func (f *fakeIndex) SearchLotNumbers(ctx context.Context, keywords []string, limit int) ([]string, error) {
	f.query = keywords
	return f.hits, f.err
}

type fakeNotifier struct {
	batches [][]types.Lot
}

func (f *fakeNotifier) Notify(ctx context.Context, lots []types.Lot) notify.Report {
	f.batches = append(f.batches, lots)
	return notify.Report{Sent: 1}
}

type fakeAnalyzer struct{ called int }

func (f *fakeAnalyzer) AnalyzePending(ctx context.Context, limit int) int {
	f.called++
	return 0
}

type fakeAssessor struct {
	rating int
	calls  int
}

func (f *fakeAssessor) Assess(ctx context.Context, name, taxID string) scoring.Assessment {
	f.calls++
	return scoring.Assessment{Rating: f.rating, Summary: "checked " + name}
}

type memProposals struct {
	rows    map[string]*types.Proposal
	order   []string
	saveErr error
}

func newMemProposals() *memProposals {
	return &memProposals{rows: map[string]*types.Proposal{}}
}

func (m *memProposals) Create(ctx context.Context, p *types.Proposal) error {
	p.ID = "p" + string(rune('0'+len(m.order)))
	cp := *p
	m.rows[p.ID] = &cp
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memProposals) Get(ctx context.Context, id string) (*types.Proposal, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProposals) ListByLot(ctx context.Context, lotID string) ([]types.Proposal, error) {
	var out []types.Proposal
	for _, id := range m.order {
		if p := m.rows[id]; p.LotID != nil && *p.LotID == lotID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProposals) ListUnanalyzed(ctx context.Context, limit int) ([]types.Proposal, error) {
	var out []types.Proposal
	for _, id := range m.order {
		if p := m.rows[id]; p.SupplierRating == nil && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProposals) SaveAnalysis(ctx context.Context, p *types.Proposal) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	row := m.rows[p.ID]
	row.SupplierRating = p.SupplierRating
	row.SupplierReliabilityInfo = p.SupplierReliabilityInfo
	row.IntegralRating = p.IntegralRating
	row.AnalyzedAt = p.AnalyzedAt
	return nil
}

type memSubscribers struct {
	subs  map[int64]*types.Subscriber
	prefs map[int64]*types.Preference
}

func (m *memSubscribers) Get(ctx context.Context, id int64) (*types.Subscriber, error) {
	return m.subs[id], nil
}

func (m *memSubscribers) GetOrCreatePreference(ctx context.Context, id int64) (*types.Preference, error) {
	if m.prefs[id] == nil {
		m.prefs[id] = &types.Preference{SubscriberID: id, NotifyEnabled: true}
	}
	cp := *m.prefs[id]
	return &cp, nil
}

func (m *memSubscribers) UpdatePreference(ctx context.Context, id int64, upd types.PreferenceUpdate) (*types.Preference, error) {
	p, _ := m.GetOrCreatePreference(ctx, id)
	if upd.Customers != nil {
		p.Customers = *upd.Customers
	}
	if upd.Nomenclature != nil {
		p.Nomenclature = *upd.Nomenclature
	}
	if upd.ClearBudgetMin {
		p.BudgetMin = nil
	} else if upd.BudgetMin != nil {
		p.BudgetMin = upd.BudgetMin
	}
	if upd.ClearBudgetMax {
		p.BudgetMax = nil
	} else if upd.BudgetMax != nil {
		p.BudgetMax = upd.BudgetMax
	}
	if upd.NotifyEnabled != nil {
		p.NotifyEnabled = *upd.NotifyEnabled
	}
	m.prefs[id] = p
	return p, nil
}

var _ ingestion.LotStore = (*memLots)(nil)

var errBoom = errors.New("boom")
