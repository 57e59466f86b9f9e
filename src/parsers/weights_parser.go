package parsers

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/username/dealdesk/backend/src/models"
)

// ParseCostFactorWeights parses the cost-factor weight table with columns
// (cost_factor, factor). The three driver weights must be present and sum
// to 1.0 — they are a declared policy, not derived values, so a table that
// doesn't add up is a configuration error.
func ParseCostFactorWeights(r io.Reader) (*models.CostFactorWeights, error) {
	cols, records, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, "cost_factor", "factor"); err != nil {
		return nil, err
	}

	w := &models.CostFactorWeights{}
	seen := map[string]bool{}
	for i, record := range records {
		name := strings.ToLower(field(record, cols, "cost_factor"))
		value, err := strconv.ParseFloat(field(record, cols, "factor"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid weight %q: %w", i+1, field(record, cols, "factor"), err)
		}
		switch name {
		case "labor":
			w.Labor = value
		case "steel":
			w.Steel = value
		case "energy":
			w.Energy = value
		default:
			return nil, fmt.Errorf("row %d: unknown cost factor %q", i+1, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("row %d: duplicate cost factor %q", i+1, name)
		}
		seen[name] = true
	}

	for _, name := range []string{"labor", "steel", "energy"} {
		if !seen[name] {
			return nil, fmt.Errorf("cost factor %q missing from weight table", name)
		}
	}
	if sum := w.Labor + w.Steel + w.Energy; math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("cost factor weights must sum to 1.0, got %v", sum)
	}
	return w, nil
}

// LoadCostFactorWeights loads the weight table from disk.
func LoadCostFactorWeights(path string) (*models.CostFactorWeights, error) {
	return openAndParse(path, ParseCostFactorWeights)
}
