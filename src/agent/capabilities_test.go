package agent

import (
	"strings"
	"testing"

	"github.com/username/dealdesk/backend/src/models"
)

func testSnapshot() *Snapshot {
	offer := 102.0
	return &Snapshot{
		Transactions: []models.Transaction{
			{Customer: "Acme Corp", Supplier: "Northfield", Price: 100, Volume: 500, Quality: 0.95},
			{Customer: "Acme Corp", Supplier: "Northfield", Price: 104, Volume: 300, Quality: 0.85},
		},
		BasePrices: []models.YearPrice{
			{Supplier: "Northfield", Year: 2023, Price: 100, Known: true, Classification: "avg"},
			{Supplier: "Northfield", Year: 2024, Price: 108, Known: true, Classification: "high"},
		},
		Labor:   &models.CostRateSeries{Factor: "labor", Points: []models.CostRatePoint{{Year: 2024, Rate: 1.02}}},
		Steel:   &models.CostRateSeries{Factor: "steel", Points: []models.CostRatePoint{{Year: 2024, Rate: 1.01}}},
		Energy:  &models.CostRateSeries{Factor: "energy", Points: []models.CostRatePoint{{Year: 2024, Rate: 1.00}}},
		Weights: models.CostFactorWeights{Labor: 0.5, Steel: 0.3, Energy: 0.2},
		Offers:  []models.Offer{{Supplier: "Northfield", Price: &offer}},
	}
}

func TestDispatch_CoversEveryCapability(t *testing.T) {
	for _, c := range All {
		if _, ok := Dispatch[c]; !ok {
			t.Errorf("capability %s has no dispatch entry", c.Name())
		}
	}
	if len(Dispatch) != len(All) {
		t.Errorf("dispatch table has %d entries for %d capabilities", len(Dispatch), len(All))
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, c := range All {
		parsed, err := Parse(c.Name())
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", c.Name(), err)
		}
		if parsed != c {
			t.Errorf("Parse(%q) = %v, want %v", c.Name(), parsed, c)
		}
	}
}

func TestParse_UnknownName(t *testing.T) {
	if _, err := Parse("drop_all_tables"); err == nil {
		t.Error("unknown wire name must fail, not fall through to a lookup")
	}
}

func TestInvoke_AllCapabilitiesProduceOutput(t *testing.T) {
	snap := testSnapshot()
	for _, c := range All {
		out, err := Invoke(c, snap)
		if err != nil {
			t.Fatalf("Invoke(%s): unexpected error: %v", c.Name(), err)
		}
		if out == "" {
			t.Errorf("Invoke(%s) returned empty output", c.Name())
		}
	}
}

func TestCurrentPrices_PrefersLiveOffer(t *testing.T) {
	out, err := Invoke(CapCurrentPrices, testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Northfield: 102.00") {
		t.Errorf("expected the live offer 102.00 over the 2024 base price, got:\n%s", out)
	}
}

func TestPriceRating_ListsClassifications(t *testing.T) {
	out, err := Invoke(CapPriceRating, testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Northfield: avg, high") {
		t.Errorf("expected classification history in output, got:\n%s", out)
	}
}
