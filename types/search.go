package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchIntent is the LLM's reading of a free-text lot query.
type SearchIntent struct {
	Filters  FilterConditions `json:"filters"`
	Keywords []string         `json:"keywords"`
}

// FilterConditions is what the LLM returns; the service turns it into a LotFilter.
type FilterConditions struct {
	Customers    []string     `json:"customers,omitempty"`
	ReviewStatus string       `json:"review_status,omitempty"`
	DateRange    *DateRange   `json:"date_range,omitempty"`
	AmountRange  *AmountRange `json:"amount_range,omitempty"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type AmountRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Empty reports whether no condition is set.
func (f FilterConditions) Empty() bool {
	return len(f.Customers) == 0 && f.ReviewStatus == "" && f.DateRange == nil && f.AmountRange == nil
}

// LotFilter narrows lot listings in the store.
type LotFilter struct {
	Customers      []string
	ReviewStatus   ReviewStatus
	BudgetMin      *decimal.Decimal
	BudgetMax      *decimal.Decimal
	DeadlineFrom   *time.Time
	DeadlineTo     *time.Time
	LotNumbers     []string
	IncludeExpired bool
	Limit          int
}

// ToLotFilter converts LLM filter output, dropping values that do not parse.
func (f FilterConditions) ToLotFilter() LotFilter {
	out := LotFilter{Customers: f.Customers}
	if s := ReviewStatus(f.ReviewStatus); s.Valid() {
		out.ReviewStatus = s
	}
	if f.AmountRange != nil {
		if f.AmountRange.Min != nil {
			v := decimal.NewFromFloat(*f.AmountRange.Min)
			out.BudgetMin = &v
		}
		if f.AmountRange.Max != nil {
			v := decimal.NewFromFloat(*f.AmountRange.Max)
			out.BudgetMax = &v
		}
	}
	if f.DateRange != nil {
		if t, err := time.Parse("2006-01-02", f.DateRange.Start); err == nil {
			out.DeadlineFrom = &t
		}
		if t, err := time.Parse("2006-01-02", f.DateRange.End); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			out.DeadlineTo = &end
		}
	}
	return out
}
