package parsers

import (
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/username/dealdesk/backend/src/models"
)

// ParseSupplierProfiles parses the static supplier-profile table. Tier
// values are lowercased but otherwise passed through untouched; validity
// is the scoring engine's concern so that a bad tier fails scoring for
// that supplier instead of dropping the row here.
func ParseSupplierProfiles(r io.Reader) ([]models.SupplierProfile, error) {
	cols, records, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, "supplier", "reliability", "quality"); err != nil {
		return nil, err
	}

	var profiles []models.SupplierProfile
	for _, record := range records {
		name := field(record, cols, "supplier")
		if name == "" {
			continue
		}
		profiles = append(profiles, models.SupplierProfile{
			Supplier:    name,
			Reliability: models.Tier(strings.ToLower(field(record, cols, "reliability"))),
			Quality:     models.Tier(strings.ToLower(field(record, cols, "quality"))),
		})
	}
	return profiles, nil
}

// LoadSupplierProfiles loads the supplier-profile table from disk.
func LoadSupplierProfiles(path string) ([]models.SupplierProfile, error) {
	return openAndParse(path, ParseSupplierProfiles)
}

// ParseSupplierYearPrices parses the supplier base-price table
// (supplier, year, base_price, price_classification). An empty base_price
// cell means no price was recorded for that period and yields a row with
// Known == false, never a zero price.
func ParseSupplierYearPrices(r io.Reader) ([]models.YearPrice, error) {
	cols, records, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, "supplier", "year", "base_price"); err != nil {
		return nil, err
	}

	var prices []models.YearPrice
	for _, record := range records {
		year, err := strconv.Atoi(field(record, cols, "year"))
		if err != nil {
			log.Printf("Skipping base-price row due to invalid year: %s", field(record, cols, "year"))
			continue
		}

		yp := models.YearPrice{
			Supplier:       field(record, cols, "supplier"),
			Year:           year,
			Classification: field(record, cols, "price_classification"),
		}
		priceStr := field(record, cols, "base_price")
		if priceStr != "" {
			price, err := strconv.ParseFloat(priceStr, 64)
			if err == nil {
				yp.Price = price
				yp.Known = true
			}
		}
		prices = append(prices, yp)
	}
	return prices, nil
}

// LoadSupplierYearPrices loads the supplier base-price table from disk.
func LoadSupplierYearPrices(path string) ([]models.YearPrice, error) {
	return openAndParse(path, ParseSupplierYearPrices)
}
