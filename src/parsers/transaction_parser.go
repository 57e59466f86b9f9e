package parsers

import (
	"io"
	"log"
	"strconv"
	"time"

	"github.com/username/dealdesk/backend/src/models"
	"github.com/username/dealdesk/backend/src/utils"
)

// ParseTransactions parses the purchase-history table. Rows with an
// unparseable date are skipped with a log line; rows without a recorded
// price are skipped as well (a purchase event with no price carries no
// information for any downstream computation).
func ParseTransactions(r io.Reader) ([]models.Transaction, error) {
	cols, records, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, "decision_date", "customer", "supplier", "price"); err != nil {
		return nil, err
	}

	var txs []models.Transaction
	for _, record := range records {
		dateStr := field(record, cols, "decision_date")
		date, err := time.Parse(utils.DefaultDateFormat, dateStr)
		if err != nil {
			log.Printf("Skipping transaction row due to invalid date: %s", dateStr)
			continue
		}

		priceStr := field(record, cols, "price")
		if priceStr == "" {
			continue
		}
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			log.Printf("Skipping transaction row due to invalid price: %s", priceStr)
			continue
		}

		volume, _ := strconv.Atoi(field(record, cols, "volume"))
		delay, _ := strconv.Atoi(field(record, cols, "arrival_delay"))
		reliability, _ := strconv.Atoi(field(record, cols, "reliability"))
		quality, _ := strconv.ParseFloat(field(record, cols, "quality"), 64)

		txs = append(txs, models.Transaction{
			Customer:     field(record, cols, "customer"),
			Supplier:     field(record, cols, "supplier"),
			DecisionDate: date,
			Price:        price,
			Volume:       volume,
			ArrivalDelay: delay,
			Reliability:  reliability,
			Quality:      quality,
		})
	}
	return txs, nil
}

// LoadTransactions loads the purchase-history table from disk.
func LoadTransactions(path string) ([]models.Transaction, error) {
	return openAndParse(path, ParseTransactions)
}

// LatestPurchase returns the customer's transaction with the maximum
// decision date, or NoBaselineError if the customer has no history.
func LatestPurchase(txs []models.Transaction, customer string) (*models.LatestPurchase, error) {
	var latest *models.Transaction
	for i := range txs {
		if txs[i].Customer != customer {
			continue
		}
		if latest == nil || txs[i].DecisionDate.After(latest.DecisionDate) {
			latest = &txs[i]
		}
	}
	if latest == nil {
		return nil, &models.NoBaselineError{Customer: customer}
	}
	return &models.LatestPurchase{
		Date:     latest.DecisionDate,
		Price:    latest.Price,
		Supplier: latest.Supplier,
	}, nil
}

// LastPriceFrom returns the most recent price a customer paid to the given
// supplier, or false if the pair has no shared history.
func LastPriceFrom(txs []models.Transaction, customer, supplier string) (float64, bool) {
	var found bool
	var bestDate time.Time
	var bestPrice float64
	for i := range txs {
		if txs[i].Customer != customer || txs[i].Supplier != supplier {
			continue
		}
		if !found || txs[i].DecisionDate.After(bestDate) {
			found = true
			bestDate = txs[i].DecisionDate
			bestPrice = txs[i].Price
		}
	}
	return bestPrice, found
}
