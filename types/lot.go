package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type LotStatus string

const (
	LotStatusActive   LotStatus = "active"
	LotStatusClosed   LotStatus = "closed"
	LotStatusPending  LotStatus = "pending"
	LotStatusRejected LotStatus = "rejected"
)

// Valid reports whether s is one of the known lot states.
func (s LotStatus) Valid() bool {
	switch s {
	case LotStatusActive, LotStatusClosed, LotStatusPending, LotStatusRejected:
		return true
	}
	return false
}

type ReviewStatus string

const (
	ReviewNotViewed ReviewStatus = "not_viewed"
	ReviewInWork    ReviewStatus = "in_work"
	ReviewRejected  ReviewStatus = "rejected"
)

// Valid reports whether s is one of the known review states.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewNotViewed, ReviewInWork, ReviewRejected:
		return true
	}
	return false
}

type LotSource string

const (
	SourceScraped LotSource = "scraped"
	SourceMailed  LotSource = "mailed"
	SourceManual  LotSource = "manual"
)

func (s LotSource) Valid() bool {
	switch s {
	case SourceScraped, SourceMailed, SourceManual:
		return true
	}
	return false
}

// RawLot is a lot as produced by a source, before deduplication.
type RawLot struct {
	LotNumber    string          `json:"lot_number"`
	PlatformName string          `json:"platform_name,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Budget       decimal.Decimal `json:"budget"`
	Deadline     time.Time       `json:"deadline"`
	Customer     string          `json:"customer,omitempty"`
	Nomenclature []string        `json:"nomenclature,omitempty"`
	URL          string          `json:"url,omitempty"`
	Source       LotSource       `json:"source,omitempty"`
	Status       LotStatus       `json:"status,omitempty"`
}

// Lot is the domain view of a persisted lot.
type Lot struct {
	ID                    string          `json:"id"`
	LotNumber             string          `json:"lot_number"`
	PlatformName          string          `json:"platform_name,omitempty"`
	Title                 string          `json:"title"`
	Description           string          `json:"description"`
	Budget                decimal.Decimal `json:"budget"`
	Deadline              time.Time       `json:"deadline"`
	Customer              *string         `json:"customer,omitempty"`
	Nomenclature          []string        `json:"nomenclature,omitempty"`
	Status                LotStatus       `json:"status"`
	ReviewStatus          ReviewStatus    `json:"review_status"`
	Source                LotSource       `json:"source"`
	URL                   string          `json:"url,omitempty"`
	DocumentationText     string          `json:"documentation_text,omitempty"`
	DocumentationAnalyzed bool            `json:"documentation_analyzed"`
	OwnerID               *int64          `json:"owner_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// CustomerName returns the customer or "" when unset.
func (l *Lot) CustomerName() string {
	if l.Customer == nil {
		return ""
	}
	return *l.Customer
}

// Outcome is the per-record result of an ingestion attempt.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)
