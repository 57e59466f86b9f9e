package parsers

import (
	"errors"
	"strings"
	"testing"

	"github.com/username/dealdesk/backend/src/models"
)

const transactionsCSV = "decision_date,customer,supplier,price,volume,arrival_delay,reliability,quality\n" +
	"2024-05-01,Acme Corp,Northfield,100.0,500,2,1,0.95\n" +
	"2025-01-15,Acme Corp,Eastgate,110.0,300,0,1,0.90\n" +
	"2024-09-01,Other GmbH,Northfield,98.0,200,1,0,0.80\n" +
	"not-a-date,Acme Corp,Northfield,105.0,100,0,1,0.99\n"

func TestParseTransactions_SkipsBadRows(t *testing.T) {
	txs, err := ParseTransactions(strings.NewReader(transactionsCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 parsed transactions (bad date skipped), got %d", len(txs))
	}
	if txs[0].Supplier != "Northfield" || txs[0].Volume != 500 || txs[0].Quality != 0.95 {
		t.Errorf("unexpected first transaction: %+v", txs[0])
	}
}

func TestLatestPurchase_MaxDecisionDate(t *testing.T) {
	txs, err := ParseTransactions(strings.NewReader(transactionsCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := LatestPurchase(txs, "Acme Corp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.Supplier != "Eastgate" || latest.Price != 110 {
		t.Errorf("expected the 2025-01-15 Eastgate purchase, got %+v", latest)
	}
}

func TestLatestPurchase_NoHistory(t *testing.T) {
	txs, err := ParseTransactions(strings.NewReader(transactionsCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = LatestPurchase(txs, "Unknown AG")
	var noBaseline *models.NoBaselineError
	if !errors.As(err, &noBaseline) {
		t.Fatalf("expected NoBaselineError, got %T: %v", err, err)
	}
	if noBaseline.Customer != "Unknown AG" {
		t.Errorf("error should name the customer, got %q", noBaseline.Customer)
	}
}

func TestLastPriceFrom(t *testing.T) {
	txs, err := ParseTransactions(strings.NewReader(transactionsCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	price, ok := LastPriceFrom(txs, "Acme Corp", "Northfield")
	if !ok || price != 100 {
		t.Errorf("expected last Northfield price 100, got %v (ok=%v)", price, ok)
	}
	if _, ok := LastPriceFrom(txs, "Acme Corp", "Westbrook"); ok {
		t.Error("pair with no shared history must report no price")
	}
}
