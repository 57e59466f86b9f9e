package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/username/dealdesk/backend/src/models"
)

// CSVOfferStore persists the flat offer/leverage view as a small CSV table
// (supplier, offer, leverage). The whole file is rewritten on every save.
// The trail itself is process state only in this backend.
type CSVOfferStore struct {
	path string
}

func NewCSVOfferStore(path string) *CSVOfferStore {
	return &CSVOfferStore{path: path}
}

func (s *CSVOfferStore) Load() ([]models.Offer, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening offer table '%s': %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading offer table '%s': %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[name] = i
	}
	supplierIdx, ok := cols["supplier"]
	if !ok {
		return nil, fmt.Errorf("offer table '%s' missing 'supplier' column", s.path)
	}
	offerIdx, hasOffer := cols["offer"]
	leverageIdx, hasLeverage := cols["leverage"]

	var offers []models.Offer
	for _, record := range records[1:] {
		if supplierIdx >= len(record) || record[supplierIdx] == "" {
			continue
		}
		offer := models.Offer{Supplier: record[supplierIdx]}
		if hasOffer && offerIdx < len(record) && record[offerIdx] != "" {
			// Non-numeric offer cells mean "not specified yet".
			if price, err := strconv.ParseFloat(record[offerIdx], 64); err == nil {
				offer.Price = &price
			}
		}
		if hasLeverage && leverageIdx < len(record) {
			offer.LeverageNotes = record[leverageIdx]
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func (s *CSVOfferStore) Save(offers []models.Offer) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating offer table directory: %w", err)
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("rewriting offer table '%s': %w", s.path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"supplier", "offer", "leverage"}); err != nil {
		return err
	}
	for _, offer := range offers {
		priceStr := ""
		if offer.Price != nil {
			priceStr = strconv.FormatFloat(*offer.Price, 'f', 2, 64)
		}
		if err := writer.Write([]string{offer.Supplier, priceStr, offer.LeverageNotes}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// AppendTrail is a no-op for the CSV backend: the file holds the flat
// view only and the trail stays process state.
func (s *CSVOfferStore) AppendTrail(supplier string, price float64) error {
	return nil
}
