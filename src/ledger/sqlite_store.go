package ledger

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/username/dealdesk/backend/src/models"
)

// SQLiteOfferStore persists the flat view in the offers table and, unlike
// the CSV backend, also keeps a durable copy of the trail in offer_trail.
type SQLiteOfferStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

func NewSQLiteOfferStore(db *sql.DB) *SQLiteOfferStore {
	return &SQLiteOfferStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *SQLiteOfferStore) Load() ([]models.Offer, error) {
	rows, err := s.db.Query(`SELECT supplier, current_offer, leverage_notes FROM offers ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var offer models.Offer
		var price sql.NullFloat64
		var notes sql.NullString
		if err := rows.Scan(&offer.Supplier, &price, &notes); err != nil {
			return nil, fmt.Errorf("scanning offer row: %w", err)
		}
		if price.Valid {
			v := price.Float64
			offer.Price = &v
		}
		offer.LeverageNotes = notes.String
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

func (s *SQLiteOfferStore) Save(offers []models.Offer) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning offer save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM offers`); err != nil {
		return fmt.Errorf("clearing offers table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO offers (supplier, current_offer, leverage_notes, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return fmt.Errorf("preparing offer insert: %w", err)
	}
	defer stmt.Close()

	for _, offer := range offers {
		var price interface{}
		if offer.Price != nil {
			price = *offer.Price
		}
		if _, err := stmt.Exec(offer.Supplier, price, offer.LeverageNotes); err != nil {
			return fmt.Errorf("inserting offer for %s: %w", offer.Supplier, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteOfferStore) AppendTrail(supplier string, price float64) error {
	id := ulid.MustNew(ulid.Now(), s.entropy).String()
	_, err := s.db.Exec(`INSERT INTO offer_trail (id, supplier, price) VALUES (?, ?, ?)`, id, supplier, price)
	if err != nil {
		return fmt.Errorf("inserting trail entry for %s: %w", supplier, err)
	}
	return nil
}
