package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/username/dealdesk/backend/src/models"
)

func TestCSVOfferStore_MissingFileIsEmpty(t *testing.T) {
	store := NewCSVOfferStore(filepath.Join(t.TempDir(), "offers.csv"))
	offers, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offers != nil {
		t.Errorf("expected no offers from a missing file, got %v", offers)
	}
}

func TestCSVOfferStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offers.csv")
	store := NewCSVOfferStore(path)

	price := 101.5
	in := []models.Offer{
		{Supplier: "Northfield", Price: &price, LeverageNotes: "margin expanded 8% over costs"},
		{Supplier: "Eastgate"},
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(out))
	}
	if out[0].Supplier != "Northfield" || out[0].Price == nil || *out[0].Price != 101.5 {
		t.Errorf("round trip lost the offer price: %+v", out[0])
	}
	if out[0].LeverageNotes != "margin expanded 8% over costs" {
		t.Errorf("round trip lost the leverage notes: %q", out[0].LeverageNotes)
	}
	if out[1].Price != nil {
		t.Errorf("supplier without an offer must stay unspecified, got %v", *out[1].Price)
	}
}

func TestCSVOfferStore_NonNumericOfferIsUnspecified(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offers.csv")
	content := "supplier,offer,leverage\nNorthfield,pending,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	offers, err := NewCSVOfferStore(path).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer row, got %d", len(offers))
	}
	if offers[0].Price != nil {
		t.Errorf("non-numeric offer cell must load as unspecified, got %v", *offers[0].Price)
	}
}
