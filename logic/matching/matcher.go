package matching

import (
	"context"
	"strings"

	"procurement-radar/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Verdict is a classifier answer. Anything other than VerdictYes is treated
// as "does not match".
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictYes
	VerdictNo
)

func (v Verdict) String() string {
	switch v {
	case VerdictYes:
		return "yes"
	case VerdictNo:
		return "no"
	}
	return "unknown"
}

// Classifier decides whether a lot belongs to one of the candidate categories.
// Implementations must not panic or block past ctx; failures are VerdictUnknown.
type Classifier interface {
	Classify(ctx context.Context, lot *types.Lot, candidates []Category) Verdict
}

// Matcher evaluates one lot against one preference profile.
type Matcher struct {
	catalog    *Catalog
	classifier Classifier
	semantic   bool
	log        *zap.Logger
}

// NewMatcher builds a matcher. classifier may be nil, which disables the
// semantic fallback regardless of semanticFallback.
func NewMatcher(catalog *Catalog, classifier Classifier, semanticFallback bool, log *zap.Logger) *Matcher {
	return &Matcher{
		catalog:    catalog,
		classifier: classifier,
		semantic:   semanticFallback && classifier != nil,
		log:        log,
	}
}

// Matches is customer AND budget AND nomenclature. The nomenclature check
// runs last because it is the only one that may call out.
func (m *Matcher) Matches(ctx context.Context, lot *types.Lot, pref *types.Preference) bool {
	if pref == nil {
		return true
	}
	if !MatchCustomer(lot.Customer, pref.Customers) {
		return false
	}
	if !MatchBudget(lot.Budget, pref.BudgetMin, pref.BudgetMax) {
		return false
	}
	return m.MatchNomenclature(ctx, lot, pref.Nomenclature)
}

// MatchCustomer passes when the filter is empty, otherwise the lot customer
// must equal or contain (or be contained in) one entry, ignoring case.
func MatchCustomer(customer *string, filter []string) bool {
	var entries []string
	for _, f := range filter {
		if f = strings.TrimSpace(f); f != "" {
			entries = append(entries, strings.ToLower(f))
		}
	}
	if len(entries) == 0 {
		return true
	}
	if customer == nil || strings.TrimSpace(*customer) == "" {
		return false
	}
	c := strings.ToLower(strings.TrimSpace(*customer))
	for _, e := range entries {
		if c == e || strings.Contains(c, e) || strings.Contains(e, c) {
			return true
		}
	}
	return false
}

// MatchBudget checks inclusive bounds; a nil bound is unbounded.
func MatchBudget(budget decimal.Decimal, min, max *decimal.Decimal) bool {
	if min != nil && budget.LessThan(*min) {
		return false
	}
	if max != nil && budget.GreaterThan(*max) {
		return false
	}
	return true
}

// MatchNomenclature tries the keyword table before the classifier.
func (m *Matcher) MatchNomenclature(ctx context.Context, lot *types.Lot, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == types.AllLots {
			return true
		}
	}

	if m.catalog.KeywordMatch(lot.Title, selected) {
		return true
	}
	if !m.semantic {
		return false
	}

	verdict := m.classifier.Classify(ctx, lot, m.catalog.Lookup(selected))
	m.log.Debug("semantic nomenclature check",
		zap.String("lot_number", lot.LotNumber),
		zap.Stringer("verdict", verdict))
	return verdict == VerdictYes
}
