package processors

import (
	"sort"

	"github.com/username/dealdesk/backend/src/logger"
	"github.com/username/dealdesk/backend/src/models"
)

// LeverageProcessor aggregates historical price-change vs. cost-change
// deltas per supplier. A positive signal means the supplier's price growth
// outpaced the weighted cost growth of the underlying drivers (margin
// expansion, leverage for the buyer); the processor emits the numeric
// signal only and makes no negotiation recommendation.
type LeverageProcessor struct {
	weights models.CostFactorWeights
}

func NewLeverageProcessor(weights models.CostFactorWeights) *LeverageProcessor {
	return &LeverageProcessor{weights: weights}
}

// costChangeByYear computes the weighted per-year cost change:
// w_labor*(labor-1) + w_steel*(steel-1) + w_energy*(energy-1), joined on
// the year key. Years missing from any series are left out (inner join).
func (p *LeverageProcessor) costChangeByYear(labor, steel, energy *models.CostRateSeries) map[int]float64 {
	laborRates := map[int]float64{}
	for _, pt := range labor.Points {
		laborRates[pt.Year] = pt.Rate
	}
	steelRates := map[int]float64{}
	for _, pt := range steel.Points {
		steelRates[pt.Year] = pt.Rate
	}
	energyRates := map[int]float64{}
	for _, pt := range energy.Points {
		energyRates[pt.Year] = pt.Rate
	}

	change := map[int]float64{}
	for year, l := range laborRates {
		s, okS := steelRates[year]
		e, okE := energyRates[year]
		if !okS || !okE {
			continue
		}
		change[year] = p.weights.Labor*(l-1) + p.weights.Steel*(s-1) + p.weights.Energy*(e-1)
	}
	return change
}

// Signals computes the margin-expansion signal for every supplier present
// in the base-price table. Periods where a supplier's year-over-year price
// change is undefined (first known year, or a year with no recorded price)
// or where the cost change is missing are dropped from the join and
// counted as dropped, not treated as zero.
func (p *LeverageProcessor) Signals(
	basePrices []models.YearPrice,
	labor, steel, energy *models.CostRateSeries,
) []models.LeverageSignal {
	costChange := p.costChangeByYear(labor, steel, energy)

	bySupplier := map[string][]models.YearPrice{}
	var order []string
	for _, yp := range basePrices {
		if _, ok := bySupplier[yp.Supplier]; !ok {
			order = append(order, yp.Supplier)
		}
		bySupplier[yp.Supplier] = append(bySupplier[yp.Supplier], yp)
	}

	var signals []models.LeverageSignal
	for _, supplier := range order {
		rows := bySupplier[supplier]
		sort.Slice(rows, func(a, b int) bool { return rows[a].Year < rows[b].Year })

		signal := models.LeverageSignal{Supplier: supplier}
		var prevPrice float64
		var havePrev bool
		for _, row := range rows {
			if !row.Known {
				havePrev = false
				signal.PeriodsDropped++
				continue
			}
			if !havePrev {
				prevPrice = row.Price
				havePrev = true
				continue
			}
			priceChange := row.Price/prevPrice - 1
			prevPrice = row.Price

			cost, ok := costChange[row.Year]
			if !ok {
				signal.PeriodsDropped++
				continue
			}
			signal.Signal += priceChange - cost
			signal.PeriodsUsed++
		}

		if signal.PeriodsDropped > 0 && logger.L != nil {
			logger.L.Warn("Leverage join gap: periods dropped from price/cost join",
				"supplier", supplier,
				"periodsUsed", signal.PeriodsUsed,
				"periodsDropped", signal.PeriodsDropped)
		}
		signals = append(signals, signal)
	}
	return signals
}

// Trends reports the mean step of the last three yearly change rates per
// driver, the advisory "sector trend" fed to the leverage reasoning step.
func Trends(labor, steel, energy *models.CostRateSeries) map[string]float64 {
	trend := func(series *models.CostRateSeries) float64 {
		pts := append([]models.CostRatePoint(nil), series.Points...)
		sort.Slice(pts, func(a, b int) bool { return pts[a].Year < pts[b].Year })
		if len(pts) > 3 {
			pts = pts[len(pts)-3:]
		}
		if len(pts) < 2 {
			return 0
		}
		sum := 0.0
		for i := 1; i < len(pts); i++ {
			sum += pts[i].Rate - pts[i-1].Rate
		}
		return sum / float64(len(pts)-1)
	}
	return map[string]float64{
		labor.Factor:  trend(labor),
		steel.Factor:  trend(steel),
		energy.Factor: trend(energy),
	}
}
