package processors

import (
	"time"

	"github.com/username/dealdesk/backend/src/models"
)

// TrendResult is the output of the price-trend estimation: the full
// composite/estimated series for charting plus the latest estimate and the
// signed percentage change against the baseline price.
type TrendResult struct {
	Points         []models.CompositePoint `json:"points"`
	LatestEstimate float64                 `json:"latest_estimate"`
	ChangePercent  float64                 `json:"change_percent"`
}

// TrendProcessor projects an expected current fair price from a baseline
// purchase and the three cost-driver development series.
type TrendProcessor struct {
	weights models.CostFactorWeights
}

func NewTrendProcessor(weights models.CostFactorWeights) *TrendProcessor {
	return &TrendProcessor{weights: weights}
}

// referencePrice finds the normalization price for one series: the price at
// the baseline date exactly, or the first price strictly after it. A series
// whose last point lies before the baseline cannot be normalized.
func referencePrice(series *models.CostIndexSeries, baseline time.Time) (float64, error) {
	for _, p := range series.Points {
		if p.Date.Equal(baseline) || p.Date.After(baseline) {
			return p.Price, nil
		}
	}
	return 0, &models.MissingReferencePointError{Factor: series.Factor, Baseline: baseline}
}

// normalize returns date → price/reference for all points strictly after
// the baseline date.
func normalize(series *models.CostIndexSeries, baseline time.Time, reference float64) map[time.Time]float64 {
	norm := make(map[time.Time]float64)
	for _, p := range series.Points {
		if p.Date.After(baseline) {
			norm[p.Date] = p.Price / reference
		}
	}
	return norm
}

// Estimate computes the composite index and implied fair-price series for
// all dates after the baseline purchase. The composite is built on the
// intersection of the three series' dates so a gap in one file cannot
// shift another file's values.
func (p *TrendProcessor) Estimate(
	baseline models.LatestPurchase,
	labor, steel, energy *models.CostIndexSeries,
) (*TrendResult, error) {
	laborRef, err := referencePrice(labor, baseline.Date)
	if err != nil {
		return nil, err
	}
	steelRef, err := referencePrice(steel, baseline.Date)
	if err != nil {
		return nil, err
	}
	energyRef, err := referencePrice(energy, baseline.Date)
	if err != nil {
		return nil, err
	}

	laborNorm := normalize(labor, baseline.Date, laborRef)
	steelNorm := normalize(steel, baseline.Date, steelRef)
	energyNorm := normalize(energy, baseline.Date, energyRef)

	var points []models.CompositePoint
	for _, lp := range labor.Points {
		if !lp.Date.After(baseline.Date) {
			continue
		}
		l := laborNorm[lp.Date]
		s, okS := steelNorm[lp.Date]
		e, okE := energyNorm[lp.Date]
		if !okS || !okE {
			continue
		}
		composite := p.weights.Labor*l + p.weights.Steel*s + p.weights.Energy*e
		points = append(points, models.CompositePoint{
			Date:      lp.Date,
			Labor:     l,
			Steel:     s,
			Energy:    e,
			Composite: composite,
			Estimated: composite * baseline.Price,
		})
	}

	result := &TrendResult{Points: points}
	if len(points) > 0 {
		last := points[len(points)-1]
		result.LatestEstimate = last.Estimated
		result.ChangePercent = ((last.Estimated / baseline.Price) - 1) * 100
	}
	return result, nil
}
