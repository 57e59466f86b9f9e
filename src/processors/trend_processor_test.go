package processors

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/username/dealdesk/backend/src/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func indexSeries(factor string, points ...models.CostIndexPoint) *models.CostIndexSeries {
	return &models.CostIndexSeries{Factor: factor, Points: points}
}

var testWeights = models.CostFactorWeights{Labor: 0.5, Steel: 0.3, Energy: 0.2}

func TestReferencePrice_ExactMatch(t *testing.T) {
	series := indexSeries("labor",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 100},
		models.CostIndexPoint{Date: day("2025-02-01"), Price: 110},
	)
	ref, err := referencePrice(series, day("2025-01-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != 100 {
		t.Errorf("expected reference 100, got %v", ref)
	}
}

func TestReferencePrice_FirstAfterFallback(t *testing.T) {
	series := indexSeries("steel",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 200},
		models.CostIndexPoint{Date: day("2025-03-01"), Price: 210},
	)
	ref, err := referencePrice(series, day("2025-02-15"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != 210 {
		t.Errorf("expected first price after baseline (210), got %v", ref)
	}
}

func TestReferencePrice_SeriesEndsBeforeBaseline(t *testing.T) {
	series := indexSeries("energy",
		models.CostIndexPoint{Date: day("2024-01-01"), Price: 50},
		models.CostIndexPoint{Date: day("2024-06-01"), Price: 52},
	)
	_, err := referencePrice(series, day("2025-01-01"))
	if err == nil {
		t.Fatal("expected error for series ending before baseline")
	}
	var missingRef *models.MissingReferencePointError
	if !errors.As(err, &missingRef) {
		t.Fatalf("expected MissingReferencePointError, got %T: %v", err, err)
	}
	if missingRef.Factor != "energy" {
		t.Errorf("expected factor energy in error, got %q", missingRef.Factor)
	}
}

func TestNormalize_ReferenceDateIsUnity(t *testing.T) {
	series := indexSeries("labor",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 80},
		models.CostIndexPoint{Date: day("2025-02-01"), Price: 88},
	)
	baseline := day("2024-12-01")
	ref, err := referencePrice(series, baseline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	norm := normalize(series, baseline, ref)
	if got := norm[day("2025-01-01")]; got != 1.0 {
		t.Errorf("normalized value at the reference date must be 1.0, got %v", got)
	}
}

func TestEstimate_CompositeScenario(t *testing.T) {
	// Drivers move +10%, +5%, -5% after a baseline purchase at 100. With
	// weights 0.5/0.3/0.2 the composite is 1.020, the estimate 102.00 and
	// the change +2.0%.
	baseline := models.LatestPurchase{Date: day("2025-01-01"), Price: 100, Supplier: "Northfield"}
	labor := indexSeries("labor",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 100},
		models.CostIndexPoint{Date: day("2025-02-01"), Price: 110},
	)
	steel := indexSeries("steel",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 200},
		models.CostIndexPoint{Date: day("2025-02-01"), Price: 210},
	)
	energy := indexSeries("energy",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 50},
		models.CostIndexPoint{Date: day("2025-02-01"), Price: 47.5},
	)

	result, err := NewTrendProcessor(testWeights).Estimate(baseline, labor, steel, energy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Points) != 1 {
		t.Fatalf("expected 1 composite point, got %d", len(result.Points))
	}

	point := result.Points[0]
	if math.Abs(point.Composite-1.020) > 1e-9 {
		t.Errorf("expected composite 1.020, got %v", point.Composite)
	}
	if math.Abs(point.Estimated-102.00) > 1e-9 {
		t.Errorf("expected estimated 102.00, got %v", point.Estimated)
	}
	if math.Abs(result.LatestEstimate-102.00) > 1e-9 {
		t.Errorf("expected latest estimate 102.00, got %v", result.LatestEstimate)
	}
	if math.Abs(result.ChangePercent-2.0) > 1e-9 {
		t.Errorf("expected change percent +2.0, got %v", result.ChangePercent)
	}
}

func TestEstimate_DateIntersectionOnly(t *testing.T) {
	// 2025-03-01 exists in labor only; it must not produce a point.
	baseline := models.LatestPurchase{Date: day("2025-01-01"), Price: 100}
	labor := indexSeries("labor",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 100},
		models.CostIndexPoint{Date: day("2025-02-01"), Price: 105},
		models.CostIndexPoint{Date: day("2025-03-01"), Price: 108},
	)
	steel := indexSeries("steel",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 200},
		models.CostIndexPoint{Date: day("2025-02-01"), Price: 202},
	)
	energy := indexSeries("energy",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 50},
		models.CostIndexPoint{Date: day("2025-02-01"), Price: 51},
	)

	result, err := NewTrendProcessor(testWeights).Estimate(baseline, labor, steel, energy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Points) != 1 {
		t.Fatalf("expected 1 point on the date intersection, got %d", len(result.Points))
	}
	if !result.Points[0].Date.Equal(day("2025-02-01")) {
		t.Errorf("expected point for 2025-02-01, got %s", result.Points[0].Date)
	}
}

func TestEstimate_MissingReferencePropagates(t *testing.T) {
	baseline := models.LatestPurchase{Date: day("2025-06-01"), Price: 100}
	stale := indexSeries("steel",
		models.CostIndexPoint{Date: day("2025-01-01"), Price: 200},
	)
	fresh := indexSeries("labor",
		models.CostIndexPoint{Date: day("2025-06-01"), Price: 100},
		models.CostIndexPoint{Date: day("2025-07-01"), Price: 101},
	)
	energy := indexSeries("energy",
		models.CostIndexPoint{Date: day("2025-06-01"), Price: 50},
		models.CostIndexPoint{Date: day("2025-07-01"), Price: 50.5},
	)

	_, err := NewTrendProcessor(testWeights).Estimate(baseline, fresh, stale, energy)
	var missingRef *models.MissingReferencePointError
	if !errors.As(err, &missingRef) {
		t.Fatalf("expected MissingReferencePointError, got %T: %v", err, err)
	}
}
