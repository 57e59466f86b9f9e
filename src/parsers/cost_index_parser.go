package parsers

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/username/dealdesk/backend/src/models"
	"github.com/username/dealdesk/backend/src/utils"
)

// ParseCostIndexSeries parses a daily cost-driver development table with
// columns (date, price). Invariants: dates strictly increasing, price > 0.
func ParseCostIndexSeries(factor string, r io.Reader) (*models.CostIndexSeries, error) {
	cols, records, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, "date", "price"); err != nil {
		return nil, err
	}

	series := &models.CostIndexSeries{Factor: factor}
	var prev time.Time
	for i, record := range records {
		dateStr := field(record, cols, "date")
		date, err := time.Parse(utils.DefaultDateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", i+1, dateStr, err)
		}
		price, err := strconv.ParseFloat(field(record, cols, "price"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q: %w", i+1, field(record, cols, "price"), err)
		}
		if price <= 0 {
			return nil, fmt.Errorf("row %d: price must be positive, got %v", i+1, price)
		}
		if !prev.IsZero() && !date.After(prev) {
			return nil, fmt.Errorf("row %d: dates must be strictly increasing, %s follows %s",
				i+1, utils.FormatDate(date), utils.FormatDate(prev))
		}
		prev = date
		series.Points = append(series.Points, models.CostIndexPoint{Date: date, Price: price})
	}
	return series, nil
}

// LoadCostIndexSeries loads one driver's development series from disk.
func LoadCostIndexSeries(factor, path string) (*models.CostIndexSeries, error) {
	return openAndParse(path, func(r io.Reader) (*models.CostIndexSeries, error) {
		return ParseCostIndexSeries(factor, r)
	})
}

// ParseCostRateSeries parses a yearly change-rate table with columns
// (year, change_rate).
func ParseCostRateSeries(factor string, r io.Reader) (*models.CostRateSeries, error) {
	cols, records, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, "year", "change_rate"); err != nil {
		return nil, err
	}

	series := &models.CostRateSeries{Factor: factor}
	for i, record := range records {
		year, err := strconv.Atoi(field(record, cols, "year"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid year %q: %w", i+1, field(record, cols, "year"), err)
		}
		rate, err := strconv.ParseFloat(field(record, cols, "change_rate"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid change_rate %q: %w", i+1, field(record, cols, "change_rate"), err)
		}
		series.Points = append(series.Points, models.CostRatePoint{Year: year, Rate: rate})
	}
	return series, nil
}

// LoadCostRateSeries loads one driver's yearly change-rate series from disk.
func LoadCostRateSeries(factor, path string) (*models.CostRateSeries, error) {
	return openAndParse(path, func(r io.Reader) (*models.CostRateSeries, error) {
		return ParseCostRateSeries(factor, r)
	})
}
