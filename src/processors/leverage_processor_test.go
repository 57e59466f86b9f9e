package processors

import (
	"math"
	"testing"

	"github.com/username/dealdesk/backend/src/models"
)

func rateSeries(factor string, rates map[int]float64) *models.CostRateSeries {
	series := &models.CostRateSeries{Factor: factor}
	for year, rate := range rates {
		series.Points = append(series.Points, models.CostRatePoint{Year: year, Rate: rate})
	}
	return series
}

func yearPrice(supplier string, year int, price float64) models.YearPrice {
	return models.YearPrice{Supplier: supplier, Year: year, Price: price, Known: true}
}

func TestSignals_SinglePeriod(t *testing.T) {
	labor := rateSeries("labor", map[int]float64{2021: 1.02})
	steel := rateSeries("steel", map[int]float64{2021: 1.01})
	energy := rateSeries("energy", map[int]float64{2021: 1.01})

	prices := []models.YearPrice{
		yearPrice("Northfield", 2020, 100),
		yearPrice("Northfield", 2021, 110),
	}

	signals := NewLeverageProcessor(testWeights).Signals(prices, labor, steel, energy)
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}

	// price change 0.10, weighted cost change 0.5*0.02+0.3*0.01+0.2*0.01 = 0.015
	sig := signals[0]
	if math.Abs(sig.Signal-0.085) > 1e-9 {
		t.Errorf("expected signal 0.085, got %v", sig.Signal)
	}
	if sig.PeriodsUsed != 1 || sig.PeriodsDropped != 0 {
		t.Errorf("expected 1 used / 0 dropped periods, got %d / %d", sig.PeriodsUsed, sig.PeriodsDropped)
	}
}

func TestSignals_UnknownPriceResetsBaseline(t *testing.T) {
	labor := rateSeries("labor", map[int]float64{2021: 1.0, 2022: 1.0})
	steel := rateSeries("steel", map[int]float64{2021: 1.0, 2022: 1.0})
	energy := rateSeries("energy", map[int]float64{2021: 1.0, 2022: 1.0})

	prices := []models.YearPrice{
		yearPrice("Gapped", 2020, 100),
		{Supplier: "Gapped", Year: 2021, Known: false},
		yearPrice("Gapped", 2022, 120),
	}

	signals := NewLeverageProcessor(testWeights).Signals(prices, labor, steel, energy)
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}

	// The 2021 gap breaks the year-over-year chain: 2022 re-seeds the
	// baseline instead of computing a 2020->2022 change.
	sig := signals[0]
	if sig.PeriodsUsed != 0 {
		t.Errorf("expected no usable periods across the gap, got %d", sig.PeriodsUsed)
	}
	if sig.PeriodsDropped != 1 {
		t.Errorf("expected the gap year counted as dropped, got %d", sig.PeriodsDropped)
	}
	if sig.Signal != 0 {
		t.Errorf("expected zero signal, got %v", sig.Signal)
	}
}

func TestSignals_MissingCostYearDropped(t *testing.T) {
	labor := rateSeries("labor", map[int]float64{2021: 1.02})
	steel := rateSeries("steel", map[int]float64{2021: 1.01})
	// energy has no 2021 row, so the cost join for 2021 is empty
	energy := rateSeries("energy", map[int]float64{2020: 1.01})

	prices := []models.YearPrice{
		yearPrice("Northfield", 2020, 100),
		yearPrice("Northfield", 2021, 110),
	}

	signals := NewLeverageProcessor(testWeights).Signals(prices, labor, steel, energy)
	sig := signals[0]
	if sig.PeriodsUsed != 0 || sig.PeriodsDropped != 1 {
		t.Errorf("expected 0 used / 1 dropped on cost join gap, got %d / %d", sig.PeriodsUsed, sig.PeriodsDropped)
	}
	if sig.Signal != 0 {
		t.Errorf("dropped period must not contribute to the signal, got %v", sig.Signal)
	}
}

func TestSignals_SupplierOrderIsFirstSeen(t *testing.T) {
	labor := rateSeries("labor", map[int]float64{2021: 1.0})
	steel := rateSeries("steel", map[int]float64{2021: 1.0})
	energy := rateSeries("energy", map[int]float64{2021: 1.0})

	prices := []models.YearPrice{
		yearPrice("Zeta", 2020, 100),
		yearPrice("Alpha", 2020, 100),
		yearPrice("Zeta", 2021, 105),
		yearPrice("Alpha", 2021, 95),
	}

	signals := NewLeverageProcessor(testWeights).Signals(prices, labor, steel, energy)
	if len(signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(signals))
	}
	if signals[0].Supplier != "Zeta" || signals[1].Supplier != "Alpha" {
		t.Errorf("expected first-seen order [Zeta Alpha], got [%s %s]", signals[0].Supplier, signals[1].Supplier)
	}
}

func TestTrends_MeanStepOfLastThreeRates(t *testing.T) {
	labor := rateSeries("labor", map[int]float64{2019: 1.00, 2020: 1.01, 2021: 1.02, 2022: 1.04})
	steel := rateSeries("steel", map[int]float64{2021: 1.05, 2022: 1.03})
	energy := rateSeries("energy", map[int]float64{2022: 1.02})

	trends := Trends(labor, steel, energy)

	// labor: last three rates 1.01, 1.02, 1.04 -> diffs 0.01, 0.02 -> mean 0.015
	if math.Abs(trends["labor"]-0.015) > 1e-9 {
		t.Errorf("expected labor trend 0.015, got %v", trends["labor"])
	}
	if math.Abs(trends["steel"]-(-0.02)) > 1e-9 {
		t.Errorf("expected steel trend -0.02, got %v", trends["steel"])
	}
	if trends["energy"] != 0 {
		t.Errorf("a single observation has no trend, got %v", trends["energy"])
	}
}
