package services

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/username/dealdesk/backend/src/models"
)

// ThreadStore persists per-supplier negotiation email threads in the
// email_messages table.
type ThreadStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

func NewThreadStore(db *sql.DB) *ThreadStore {
	return &ThreadStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Append stores one message and returns it with id and timestamp filled in.
func (s *ThreadStore) Append(supplier, role, body string, offer *float64) (*models.EmailMessage, error) {
	msg := &models.EmailMessage{
		ID:       ulid.MustNew(ulid.Now(), s.entropy).String(),
		Supplier: supplier,
		Role:     role,
		Body:     body,
		Offer:    offer,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
	}

	var offerVal interface{}
	if offer != nil {
		offerVal = *offer
	}
	_, err := s.db.Exec(
		`INSERT INTO email_messages (id, supplier, role, body, offer, sent_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Supplier, msg.Role, msg.Body, offerVal, msg.SentAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting email message for %s: %w", supplier, err)
	}
	return msg, nil
}

// Thread returns the supplier's messages, oldest first (ULID ids sort
// chronologically).
func (s *ThreadStore) Thread(supplier string) ([]models.EmailMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, supplier, role, body, offer, sent_at FROM email_messages WHERE supplier = ? ORDER BY id`,
		supplier,
	)
	if err != nil {
		return nil, fmt.Errorf("querying email thread for %s: %w", supplier, err)
	}
	defer rows.Close()

	var thread []models.EmailMessage
	for rows.Next() {
		var msg models.EmailMessage
		var offer sql.NullFloat64
		if err := rows.Scan(&msg.ID, &msg.Supplier, &msg.Role, &msg.Body, &offer, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("scanning email message: %w", err)
		}
		if offer.Valid {
			v := offer.Float64
			msg.Offer = &v
		}
		thread = append(thread, msg)
	}
	return thread, rows.Err()
}
