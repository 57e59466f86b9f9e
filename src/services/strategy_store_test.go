package services

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/username/dealdesk/backend/src/models"
)

func TestStrategyStore_MissingArtifact(t *testing.T) {
	store := NewStrategyStore(filepath.Join(t.TempDir(), "strategy.json"))
	doc, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil for a missing artifact, got %+v", doc)
	}
}

func TestStrategyStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStrategyStore(filepath.Join(t.TempDir(), "out", "strategy.json"))

	in := &models.StrategyDocument{
		Title: "Negotiation strategy for Drive Shaft",
		Steps: []models.StrategyStep{
			{Action: "Negotiate with Northfield", Leverage: "margin expanded 8% over costs"},
			{Action: "Negotiate with Eastgate", Leverage: "sector costs falling"},
		},
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\nin:  %+v\nout: %+v", in, out)
	}
}
