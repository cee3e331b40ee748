package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Proposal is one supplier's quotation, optionally tied to a lot.
type Proposal struct {
	ID                      string           `json:"id"`
	LotID                   *string          `json:"lot_id,omitempty"`
	SupplierName            string           `json:"supplier_name"`
	SupplierTaxID           string           `json:"supplier_tax_id,omitempty"`
	ProductPrice            decimal.Decimal  `json:"product_price"`
	DeliveryCost            *decimal.Decimal `json:"delivery_cost,omitempty"`
	OtherConditions         string           `json:"other_conditions,omitempty"`
	ItemsCount              *int             `json:"items_count,omitempty"`
	SupplierRating          *int             `json:"supplier_rating,omitempty"`
	SupplierReliabilityInfo string           `json:"supplier_reliability_info,omitempty"`
	IntegralRating          *float64         `json:"integral_rating,omitempty"`
	CreatedBy               *int64           `json:"created_by,omitempty"`
	CreatedAt               time.Time        `json:"created_at"`
	AnalyzedAt              *time.Time       `json:"analyzed_at,omitempty"`
}

type CreateProposalRequest struct {
	LotNumber       string           `json:"lot_number"`
	SupplierName    string           `json:"supplier_name" binding:"required"`
	SupplierTaxID   string           `json:"supplier_tax_id"`
	ProductPrice    decimal.Decimal  `json:"product_price"`
	DeliveryCost    *decimal.Decimal `json:"delivery_cost"`
	OtherConditions string           `json:"other_conditions"`
	ItemsCount      *int             `json:"items_count"`
	CreatedBy       *int64           `json:"created_by"`
}
