package scoring

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	PriceWeight      = 0.4
	DeliveryWeight   = 0.2
	SupplierWeight   = 0.3
	ConditionsWeight = 0.1

	// NeutralRating is used when no reliability rating is available.
	NeutralRating = 50
)

var (
	positiveConditions = []string{"гарантия", "скидка", "рассрочка", "бонус", "подарок"}
	negativeConditions = []string{"предоплата", "полная оплата", "без возврата"}
)

// Input carries everything the integral rating depends on.
type Input struct {
	ProductPrice    decimal.Decimal
	DeliveryCost    *decimal.Decimal
	SupplierRating  *int
	OtherConditions string
	// PriceScore is a caller-side normalised price score; nil means the
	// price is taken as maximal.
	PriceScore *float64
}

// Score returns the integral rating in [0,100], rounded to two decimals.
func Score(in Input) float64 {
	price := 100.0
	if in.PriceScore != nil {
		price = clamp(*in.PriceScore)
	}

	supplier := float64(NeutralRating)
	if in.SupplierRating != nil {
		supplier = clamp(float64(*in.SupplierRating))
	}

	total := price*PriceWeight +
		DeliveryScore(in.ProductPrice, in.DeliveryCost)*DeliveryWeight +
		supplier*SupplierWeight +
		ConditionsScore(in.OtherConditions)*ConditionsWeight
	return math.Round(total*100) / 100
}

var (
	five   = decimal.NewFromInt(5)
	ten    = decimal.NewFromInt(10)
	twenty = decimal.NewFromInt(20)
	thirty = decimal.NewFromInt(30)
)

// DeliveryScore buckets delivery cost as a percentage of the product price.
// A bucket boundary belongs to the lower score.
func DeliveryScore(price decimal.Decimal, delivery *decimal.Decimal) float64 {
	if delivery == nil || !price.IsPositive() {
		return 100
	}
	pct := delivery.Mul(decimal.NewFromInt(100)).Div(price)
	switch {
	case pct.LessThan(five):
		return 100
	case pct.LessThan(ten):
		return 90
	case pct.LessThan(twenty):
		return 70
	case pct.LessThan(thirty):
		return 50
	}
	return 30
}

// ConditionsScore starts at 50 and moves 10 points per keyword found.
func ConditionsScore(conditions string) float64 {
	text := strings.ToLower(conditions)
	if strings.TrimSpace(text) == "" {
		return 50
	}
	score := 50.0
	for _, kw := range positiveConditions {
		if strings.Contains(text, kw) {
			score += 10
		}
	}
	for _, kw := range negativeConditions {
		if strings.Contains(text, kw) {
			score -= 10
		}
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
