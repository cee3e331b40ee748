package matching

import (
	"context"
	"testing"

	"procurement-radar/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClassifier struct {
	verdict Verdict
	calls   int
	last    []Category
}

func (f *fakeClassifier) Classify(ctx context.Context, lot *types.Lot, candidates []Category) Verdict {
	f.calls++
	f.last = candidates
	return f.verdict
}

func newMatcher(t *testing.T, c Classifier, semantic bool) *Matcher {
	t.Helper()
	catalog, err := LoadCatalog("")
	require.NoError(t, err)
	return NewMatcher(catalog, c, semantic, zap.NewNop())
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func str(s string) *string { return &s }

func lot(title string, budget int64, customer *string) *types.Lot {
	return &types.Lot{LotNumber: "L-1", Title: title, Budget: decimal.NewFromInt(budget), Customer: customer}
}

func TestMatchesUnboundedPreference(t *testing.T) {
	m := newMatcher(t, nil, false)
	pref := &types.Preference{}

	assert.True(t, m.Matches(context.Background(), lot("что угодно", 0, nil), pref))
	assert.True(t, m.Matches(context.Background(), lot("болты", 1_000_000, str("ПАО")), pref))
}

func TestMatchesConjunction(t *testing.T) {
	m := newMatcher(t, nil, false)
	pref := &types.Preference{
		Customers:    []string{"Полюс"},
		Nomenclature: []string{"Метизы и крепёжные изделия"},
		BudgetMin:    dec(200),
	}

	assert.True(t, m.Matches(context.Background(), lot("Болт М12", 300, str("АО Полюс Красноярск")), pref))
	// budget fails alone
	assert.False(t, m.Matches(context.Background(), lot("Болт М12", 100, str("АО Полюс")), pref))
	// customer fails alone
	assert.False(t, m.Matches(context.Background(), lot("Болт М12", 300, str("Норникель")), pref))
	// nomenclature fails alone
	assert.False(t, m.Matches(context.Background(), lot("Ноутбук", 300, str("АО Полюс")), pref))
}

func TestMatchBudgetBoundaries(t *testing.T) {
	min, max := dec(100), dec(500)

	assert.True(t, MatchBudget(decimal.NewFromInt(100), min, max))
	assert.True(t, MatchBudget(decimal.NewFromInt(500), min, max))
	assert.False(t, MatchBudget(decimal.NewFromInt(99), min, max))
	assert.False(t, MatchBudget(decimal.NewFromInt(501), min, max))
	assert.True(t, MatchBudget(decimal.NewFromInt(1_000_000), min, nil))
	assert.True(t, MatchBudget(decimal.Zero, nil, max))
	assert.True(t, MatchBudget(decimal.RequireFromString("100.00"), min, max))
}

func TestMatchCustomer(t *testing.T) {
	assert.True(t, MatchCustomer(nil, nil))
	assert.True(t, MatchCustomer(nil, []string{" "}))
	assert.False(t, MatchCustomer(nil, []string{"Полюс"}))
	assert.False(t, MatchCustomer(str(""), []string{"Полюс"}))
	assert.True(t, MatchCustomer(str("полюс"), []string{"ПАО Полюс"}))
	assert.True(t, MatchCustomer(str("ПАО ПОЛЮС"), []string{"полюс"}))
	assert.False(t, MatchCustomer(str("Норникель"), []string{"Полюс", "Русал"}))
}

func TestNomenclatureSentinel(t *testing.T) {
	c := &fakeClassifier{verdict: VerdictNo}
	m := newMatcher(t, c, true)

	ok := m.MatchNomenclature(context.Background(), lot("Ноутбук", 1, nil), []string{"Тара", types.AllLots})
	assert.True(t, ok)
	assert.Zero(t, c.calls)
}

func TestNomenclatureKeywordBeforeClassifier(t *testing.T) {
	c := &fakeClassifier{verdict: VerdictNo}
	m := newMatcher(t, c, true)

	ok := m.MatchNomenclature(context.Background(), lot("Поставка КАБЕЛЯ силового", 1, nil), []string{"Электротехнические материалы и изделия"})
	assert.True(t, ok)
	assert.Zero(t, c.calls, "keyword hit must not reach the classifier")
}

func TestNomenclatureSemanticFallback(t *testing.T) {
	selected := []string{"Метизы и крепёжные изделия"}
	title := "Поставка изделий М12 по ГОСТ"

	yes := &fakeClassifier{verdict: VerdictYes}
	assert.True(t, newMatcher(t, yes, true).MatchNomenclature(context.Background(), lot(title, 1, nil), selected))
	require.Len(t, yes.last, 1)
	assert.Equal(t, "Метизы и крепёжные изделия", yes.last[0].Name)
	assert.Contains(t, yes.last[0].Keywords, "болт")

	unknown := &fakeClassifier{verdict: VerdictUnknown}
	assert.False(t, newMatcher(t, unknown, true).MatchNomenclature(context.Background(), lot(title, 1, nil), selected))
	assert.Equal(t, 1, unknown.calls)

	no := &fakeClassifier{verdict: VerdictNo}
	assert.False(t, newMatcher(t, no, true).MatchNomenclature(context.Background(), lot(title, 1, nil), selected))
}

func TestNomenclatureFallbackDisabled(t *testing.T) {
	c := &fakeClassifier{verdict: VerdictYes}
	m := newMatcher(t, c, false)

	assert.False(t, m.MatchNomenclature(context.Background(), lot("Поставка изделий М12", 1, nil), []string{"Метизы и крепёжные изделия"}))
	assert.Zero(t, c.calls)
}

func TestConjunctionSkipsClassifierWhenBudgetFails(t *testing.T) {
	c := &fakeClassifier{verdict: VerdictYes}
	m := newMatcher(t, c, true)
	pref := &types.Preference{Nomenclature: []string{"Тара"}, BudgetMin: dec(200)}

	assert.False(t, m.Matches(context.Background(), lot("Что-то без ключевых слов", 100, nil), pref))
	assert.Zero(t, c.calls)
}
