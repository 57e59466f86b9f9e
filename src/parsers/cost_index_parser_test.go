package parsers

import (
	"strings"
	"testing"
)

func TestParseCostIndexSeries_Valid(t *testing.T) {
	input := "date,price\n2025-01-01,100.0\n2025-01-02,101.5\n"
	series, err := ParseCostIndexSeries("labor", strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Factor != "labor" {
		t.Errorf("expected factor labor, got %q", series.Factor)
	}
	if len(series.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series.Points))
	}
	if series.Points[1].Price != 101.5 {
		t.Errorf("expected price 101.5, got %v", series.Points[1].Price)
	}
}

func TestParseCostIndexSeries_RejectsNonIncreasingDates(t *testing.T) {
	input := "date,price\n2025-01-02,100\n2025-01-01,101\n"
	if _, err := ParseCostIndexSeries("labor", strings.NewReader(input)); err == nil {
		t.Error("expected error for out-of-order dates")
	}

	dup := "date,price\n2025-01-01,100\n2025-01-01,101\n"
	if _, err := ParseCostIndexSeries("labor", strings.NewReader(dup)); err == nil {
		t.Error("expected error for duplicate dates")
	}
}

func TestParseCostIndexSeries_RejectsNonPositivePrice(t *testing.T) {
	input := "date,price\n2025-01-01,0\n"
	if _, err := ParseCostIndexSeries("steel", strings.NewReader(input)); err == nil {
		t.Error("expected error for zero price")
	}
}

func TestParseCostIndexSeries_MissingColumn(t *testing.T) {
	input := "date,value\n2025-01-01,100\n"
	if _, err := ParseCostIndexSeries("energy", strings.NewReader(input)); err == nil {
		t.Error("expected error for missing price column")
	}
}

func TestParseCostRateSeries_Valid(t *testing.T) {
	input := "year,change_rate\n2023,1.02\n2024,0.99\n"
	series, err := ParseCostRateSeries("energy", strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series.Points))
	}
	if series.Points[0].Year != 2023 || series.Points[0].Rate != 1.02 {
		t.Errorf("unexpected first point: %+v", series.Points[0])
	}
}

func TestParseCostRateSeries_InvalidYear(t *testing.T) {
	input := "year,change_rate\ntwentytwo,1.02\n"
	if _, err := ParseCostRateSeries("labor", strings.NewReader(input)); err == nil {
		t.Error("expected error for non-numeric year")
	}
}
