package processors

import (
	"sort"

	"github.com/username/dealdesk/backend/src/models"
)

// neutralPriceScore is the declared business default applied to every
// supplier when not a single one has a known numeric offer.
const neutralPriceScore = 2.0

// ScoringProcessor converts qualitative supplier attributes and current
// offers into comparable multi-criteria scores. Pure: identical inputs
// yield identical scores, and scores are only comparable within one call.
type ScoringProcessor struct{}

func NewScoringProcessor() *ScoringProcessor {
	return &ScoringProcessor{}
}

// tierScore maps a tier onto its ordinal score.
func tierScore(supplier, attribute string, tier models.Tier) (int, error) {
	switch tier {
	case models.TierLow:
		return 1, nil
	case models.TierMedium:
		return 2, nil
	case models.TierHigh:
		return 3, nil
	}
	return 0, &models.UnknownTierError{Supplier: supplier, Attribute: attribute, Value: string(tier)}
}

// fractionalRanks computes ascending fractional ranks over the given
// values: ties share the mean of their would-be ordinal ranks, so two
// cheapest tied offers both rank 1.5.
func fractionalRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// positions i..j are tied; ordinal ranks are i+1..j+1
		mean := float64(i+1+j+1) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = mean
		}
		i = j + 1
	}
	return ranks
}

// Score computes the per-supplier score triple. Offers maps supplier name
// to the current numeric offer; suppliers absent from the map (or mapped
// to nil) are excluded from price ranking.
func (p *ScoringProcessor) Score(
	profiles []models.SupplierProfile,
	offers map[string]*float64,
) ([]models.SupplierScore, error) {
	scores := make([]models.SupplierScore, 0, len(profiles))
	for _, profile := range profiles {
		reliability, err := tierScore(profile.Supplier, "reliability", profile.Reliability)
		if err != nil {
			return nil, err
		}
		quality, err := tierScore(profile.Supplier, "quality", profile.Quality)
		if err != nil {
			return nil, err
		}
		scores = append(scores, models.SupplierScore{
			Supplier:         profile.Supplier,
			ReliabilityScore: reliability,
			QualityScore:     quality,
		})
	}

	// Rank only the suppliers with a known offer, ascending by price so
	// the cheapest offer ends up with the highest price score (4 - rank).
	var ranked []int
	var prices []float64
	for i := range scores {
		if offer, ok := offers[scores[i].Supplier]; ok && offer != nil {
			ranked = append(ranked, i)
			prices = append(prices, *offer)
		}
	}

	if len(ranked) == 0 {
		for i := range scores {
			v := neutralPriceScore
			scores[i].PriceScore = &v
		}
		return scores, nil
	}

	ranks := fractionalRanks(prices)
	for pos, i := range ranked {
		v := 4 - ranks[pos]
		scores[i].PriceScore = &v
	}
	return scores, nil
}
