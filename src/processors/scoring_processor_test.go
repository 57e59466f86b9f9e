package processors

import (
	"errors"
	"reflect"
	"testing"

	"github.com/username/dealdesk/backend/src/models"
)

func profile(name string, reliability, quality models.Tier) models.SupplierProfile {
	return models.SupplierProfile{Supplier: name, Reliability: reliability, Quality: quality}
}

func offerMap(pairs map[string]float64) map[string]*float64 {
	offers := make(map[string]*float64, len(pairs))
	for name, price := range pairs {
		v := price
		offers[name] = &v
	}
	return offers
}

func priceScoreOf(t *testing.T, scores []models.SupplierScore, supplier string) float64 {
	t.Helper()
	for _, s := range scores {
		if s.Supplier == supplier {
			if s.PriceScore == nil {
				t.Fatalf("supplier %s has no price score", supplier)
			}
			return *s.PriceScore
		}
	}
	t.Fatalf("supplier %s not found in scores", supplier)
	return 0
}

func TestScore_ThreeDistinctOffersBijection(t *testing.T) {
	profiles := []models.SupplierProfile{
		profile("A", models.TierHigh, models.TierHigh),
		profile("B", models.TierMedium, models.TierMedium),
		profile("C", models.TierLow, models.TierLow),
	}
	offers := offerMap(map[string]float64{"A": 120, "B": 100, "C": 140})

	scores, err := NewScoringProcessor().Score(profiles, offers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := map[string]float64{
		"A": priceScoreOf(t, scores, "A"),
		"B": priceScoreOf(t, scores, "B"),
		"C": priceScoreOf(t, scores, "C"),
	}
	want := map[string]float64{"B": 3, "A": 2, "C": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected cheapest=3 .. priciest=1, got %v", got)
	}
}

func TestScore_NoOffersNeutralDefault(t *testing.T) {
	profiles := []models.SupplierProfile{
		profile("A", models.TierHigh, models.TierMedium),
		profile("B", models.TierLow, models.TierHigh),
	}
	scores, err := NewScoringProcessor().Score(profiles, map[string]*float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range scores {
		if s.PriceScore == nil || *s.PriceScore != 2 {
			t.Errorf("supplier %s: expected neutral price score 2, got %v", s.Supplier, s.PriceScore)
		}
	}
}

func TestScore_NilOfferIsUnspecified(t *testing.T) {
	profiles := []models.SupplierProfile{
		profile("A", models.TierHigh, models.TierHigh),
		profile("B", models.TierHigh, models.TierHigh),
	}
	offers := offerMap(map[string]float64{"A": 100})
	offers["B"] = nil

	scores, err := NewScoringProcessor().Score(profiles, offers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if priceScoreOf(t, scores, "A") != 3 {
		t.Errorf("sole ranked supplier should score 4 - 1 = 3")
	}
	for _, s := range scores {
		if s.Supplier == "B" && s.PriceScore != nil {
			t.Errorf("supplier without an offer must not receive a price score, got %v", *s.PriceScore)
		}
	}
}

func TestScore_TiedCheapestShareFractionalRank(t *testing.T) {
	profiles := []models.SupplierProfile{
		profile("A", models.TierHigh, models.TierHigh),
		profile("B", models.TierHigh, models.TierHigh),
		profile("C", models.TierHigh, models.TierHigh),
	}
	offers := offerMap(map[string]float64{"A": 100, "B": 100, "C": 130})

	scores, err := NewScoringProcessor().Score(profiles, offers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if priceScoreOf(t, scores, "A") != 2.5 || priceScoreOf(t, scores, "B") != 2.5 {
		t.Errorf("tied cheapest offers must share rank 1.5 (score 2.5), got A=%v B=%v",
			priceScoreOf(t, scores, "A"), priceScoreOf(t, scores, "B"))
	}
	if priceScoreOf(t, scores, "C") != 1 {
		t.Errorf("priciest of three should score 1, got %v", priceScoreOf(t, scores, "C"))
	}
}

func TestScore_TierMapping(t *testing.T) {
	profiles := []models.SupplierProfile{
		profile("A", models.TierHigh, models.TierLow),
		profile("B", models.TierMedium, models.TierMedium),
		profile("C", models.TierLow, models.TierHigh),
	}
	scores, err := NewScoringProcessor().Score(profiles, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantReliability := []int{3, 2, 1}
	wantQuality := []int{1, 2, 3}
	for i, s := range scores {
		if s.ReliabilityScore != wantReliability[i] {
			t.Errorf("%s: expected reliability %d, got %d", s.Supplier, wantReliability[i], s.ReliabilityScore)
		}
		if s.QualityScore != wantQuality[i] {
			t.Errorf("%s: expected quality %d, got %d", s.Supplier, wantQuality[i], s.QualityScore)
		}
	}
}

func TestScore_UnknownTierFails(t *testing.T) {
	profiles := []models.SupplierProfile{
		profile("A", models.Tier("excellent"), models.TierHigh),
	}
	_, err := NewScoringProcessor().Score(profiles, nil)
	var unknownTier *models.UnknownTierError
	if !errors.As(err, &unknownTier) {
		t.Fatalf("expected UnknownTierError, got %T: %v", err, err)
	}
	if unknownTier.Supplier != "A" || unknownTier.Attribute != "reliability" {
		t.Errorf("error should name the supplier and attribute, got %+v", unknownTier)
	}
}

func TestScore_Purity(t *testing.T) {
	profiles := []models.SupplierProfile{
		profile("A", models.TierHigh, models.TierMedium),
		profile("B", models.TierLow, models.TierHigh),
	}
	offers := offerMap(map[string]float64{"A": 110, "B": 90})

	first, err := NewScoringProcessor().Score(profiles, offers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewScoringProcessor().Score(profiles, offers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs must yield identical scores:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestFractionalRanks(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"distinct", []float64{30, 10, 20}, []float64{3, 1, 2}},
		{"all tied", []float64{5, 5, 5}, []float64{2, 2, 2}},
		{"pair tied", []float64{10, 10, 30}, []float64{1.5, 1.5, 3}},
		{"single", []float64{42}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fractionalRanks(tt.values)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("fractionalRanks(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}
