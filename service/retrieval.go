package service

import (
	"context"
	"fmt"
	"strings"

	"procurement-radar/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QueryAnalyzer reads a natural-language lot query.
type QueryAnalyzer interface {
	Analyze(ctx context.Context, query string) *types.SearchIntent
}

// ListQuery is the structured form of GET /lots.
type ListQuery struct {
	Q         string
	Customer  string
	BudgetMin *decimal.Decimal
	BudgetMax *decimal.Decimal
	Limit     int
}

// SearchResult is what a natural-language search returns.
type SearchResult struct {
	Intent *types.SearchIntent `json:"intent"`
	Lots   []types.Lot         `json:"lots"`
}

// maxSearchHits bounds how many lot numbers the index may contribute.
const maxSearchHits = 200

// List returns live lots matching the structured query. A non-empty Q is
// answered by the search index first and the store applies the rest.
func (s *LotService) List(ctx context.Context, q ListQuery) ([]types.Lot, error) {
	f := types.LotFilter{
		BudgetMin: q.BudgetMin,
		BudgetMax: q.BudgetMax,
		Limit:     q.Limit,
	}
	if c := strings.TrimSpace(q.Customer); c != "" {
		f.Customers = []string{c}
	}
	if f.BudgetMin != nil && f.BudgetMax != nil && f.BudgetMin.GreaterThan(*f.BudgetMax) {
		return nil, fmt.Errorf("%w: budget_min exceeds budget_max", ErrInvalid)
	}

	if kw := strings.Fields(q.Q); len(kw) > 0 {
		numbers, err := s.searchNumbers(ctx, kw)
		if err != nil {
			return nil, err
		}
		if len(numbers) == 0 {
			return []types.Lot{}, nil
		}
		f.LotNumbers = numbers
	}
	return s.lots.List(ctx, f)
}

// Search analyses a free-text query into filters and keywords, narrows by
// index hits when there are keywords, and lists the matching lots.
func (s *LotService) Search(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalid)
	}
	intent := s.analyzer.Analyze(ctx, query)
	s.log.Debug("query analysed",
		zap.String("query", query),
		zap.Strings("keywords", intent.Keywords),
		zap.Strings("customers", intent.Filters.Customers))

	f := intent.Filters.ToLotFilter()
	switch {
	case len(intent.Keywords) == 0:
	case s.index == nil:
		// no full-text index, the structured filters still apply
		s.log.Debug("keyword search skipped, index is not configured", zap.Strings("keywords", intent.Keywords))
	default:
		numbers, err := s.searchNumbers(ctx, intent.Keywords)
		if err != nil {
			return nil, err
		}
		if len(numbers) == 0 {
			return &SearchResult{Intent: intent, Lots: []types.Lot{}}, nil
		}
		f.LotNumbers = numbers
	}

	lots, err := s.lots.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return &SearchResult{Intent: intent, Lots: lots}, nil
}

func (s *LotService) searchNumbers(ctx context.Context, keywords []string) ([]string, error) {
	if s.index == nil {
		return nil, fmt.Errorf("keyword search: index is not configured")
	}
	numbers, err := s.index.SearchLotNumbers(ctx, keywords, maxSearchHits)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return numbers, nil
}
