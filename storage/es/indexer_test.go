package es

import (
	"context"
	"testing"
	"time"

	"procurement-radar/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToDocument(t *testing.T) {
	customer := "АО Полюс"
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := toDocument(&types.Lot{
		LotNumber:    "A-7",
		Title:        "Кабель",
		Budget:       decimal.RequireFromString("1250.50"),
		Deadline:     deadline,
		Customer:     &customer,
		Nomenclature: []string{"Кабельная продукция"},
		ReviewStatus: types.ReviewInWork,
	})

	assert.Equal(t, "A-7", doc.LotNumber)
	assert.Equal(t, customer, doc.Customer)
	assert.InDelta(t, 1250.5, doc.Budget, 1e-9)
	assert.Equal(t, "2026-03-01T12:00:00Z", doc.Deadline)
	assert.Equal(t, "in_work", doc.ReviewStatus)
}

func TestToDocumentWithoutCustomer(t *testing.T) {
	doc := toDocument(&types.Lot{LotNumber: "B-1"})
	assert.Empty(t, doc.Customer)
}

func TestEmptyBatchesAreNoops(t *testing.T) {
	e := &LotIndexer{}
	assert.NoError(t, e.IndexLots(context.Background(), nil))
	assert.NoError(t, e.DeleteByLotNumbers(context.Background(), nil))
}
