package scoring

import (
	"sort"

	"procurement-radar/types"
)

// InputOf maps a stored proposal onto scorer input.
func InputOf(p *types.Proposal) Input {
	return Input{
		ProductPrice:    p.ProductPrice,
		DeliveryCost:    p.DeliveryCost,
		SupplierRating:  p.SupplierRating,
		OtherConditions: p.OtherConditions,
	}
}

// PriceScores min-max normalises product prices across a comparison set:
// the cheapest gets 100, the dearest 0. Equal prices all get 100.
func PriceScores(proposals []types.Proposal) []float64 {
	scores := make([]float64, len(proposals))
	if len(proposals) == 0 {
		return scores
	}

	minP, maxP := proposals[0].ProductPrice, proposals[0].ProductPrice
	for _, p := range proposals[1:] {
		if p.ProductPrice.LessThan(minP) {
			minP = p.ProductPrice
		}
		if p.ProductPrice.GreaterThan(maxP) {
			maxP = p.ProductPrice
		}
	}

	spread := maxP.Sub(minP)
	if spread.IsZero() {
		for i := range scores {
			scores[i] = 100
		}
		return scores
	}
	for i, p := range proposals {
		frac := maxP.Sub(p.ProductPrice).Div(spread)
		scores[i] = frac.InexactFloat64() * 100
	}
	return scores
}

// Rank rescores a copy of proposals against each other and returns it ordered
// by integral rating, best first. Ties keep their input order.
func Rank(proposals []types.Proposal) []types.Proposal {
	ranked := make([]types.Proposal, len(proposals))
	copy(ranked, proposals)

	prices := PriceScores(ranked)
	for i := range ranked {
		in := InputOf(&ranked[i])
		in.PriceScore = &prices[i]
		score := Score(in)
		ranked[i].IntegralRating = &score
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].IntegralRating > *ranked[j].IntegralRating
	})
	return ranked
}
