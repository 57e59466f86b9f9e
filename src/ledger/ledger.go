// Package ledger holds the per-session negotiation offer trails and
// persists the flat offer/leverage view after every mutation.
package ledger

import (
	"fmt"
	"sync"

	"github.com/username/dealdesk/backend/src/logger"
	"github.com/username/dealdesk/backend/src/models"
)

// OfferStore persists the ledger's flat view (supplier → current offer,
// leverage notes). Save overwrites the whole table so concurrent readers
// always see a consistent latest snapshot.
type OfferStore interface {
	Load() ([]models.Offer, error)
	Save(offers []models.Offer) error
	AppendTrail(supplier string, price float64) error
}

// Ledger maps each supplier to its offer trail (ordered offers, first
// entry = opening offer) and its leverage notes. Trails live in process
// state for the session; the flat view is written back through the store
// after every mutation. RecordOffer is not idempotent: recording the same
// price twice appends twice, so callers must record once per round.
type Ledger struct {
	mu     sync.Mutex
	trails map[string][]float64
	notes  map[string]string
	order  []string
	store  OfferStore
}

// New builds a ledger over the given store, seeding the trails with the
// current offers already persisted (each becomes an opening offer).
func New(store OfferStore) (*Ledger, error) {
	l := &Ledger{
		trails: make(map[string][]float64),
		notes:  make(map[string]string),
		store:  store,
	}
	offers, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading persisted offers: %w", err)
	}
	for _, offer := range offers {
		l.ensure(offer.Supplier)
		if offer.Price != nil {
			l.trails[offer.Supplier] = append(l.trails[offer.Supplier], *offer.Price)
		}
		l.notes[offer.Supplier] = offer.LeverageNotes
	}
	return l, nil
}

// ensure registers a supplier, preserving first-seen order for the flat view.
func (l *Ledger) ensure(supplier string) {
	if _, ok := l.trails[supplier]; !ok {
		l.trails[supplier] = nil
		l.order = append(l.order, supplier)
	}
}

// RecordOffer appends price to the supplier's trail and persists the flat
// view. Appends are unconditional; duplicate-guarding is the caller's job.
func (l *Ledger) RecordOffer(supplier string, price float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ensure(supplier)
	l.trails[supplier] = append(l.trails[supplier], price)
	if err := l.store.AppendTrail(supplier, price); err != nil {
		logger.L.Warn("Failed to persist offer-trail entry", "supplier", supplier, "error", err)
	}
	return l.persistLocked()
}

// SetLeverageNotes replaces the supplier's leverage notes and persists the
// flat view.
func (l *Ledger) SetLeverageNotes(supplier, notes string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ensure(supplier)
	l.notes[supplier] = notes
	return l.persistLocked()
}

// CurrentOffer returns the last entry of the supplier's trail. The second
// return is false when the trail is empty (offer unspecified).
func (l *Ledger) CurrentOffer(supplier string) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	trail := l.trails[supplier]
	if len(trail) == 0 {
		return 0, false
	}
	return trail[len(trail)-1], true
}

// Trail returns a copy of the supplier's offer history, oldest first.
func (l *Ledger) Trail(supplier string) []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]float64(nil), l.trails[supplier]...)
}

// LeverageNotes returns the supplier's leverage notes, empty if none.
func (l *Ledger) LeverageNotes(supplier string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.notes[supplier]
}

// Snapshot returns the flat view in first-seen supplier order.
func (l *Ledger) Snapshot() []models.Offer {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() []models.Offer {
	offers := make([]models.Offer, 0, len(l.order))
	for _, supplier := range l.order {
		offer := models.Offer{Supplier: supplier, LeverageNotes: l.notes[supplier]}
		if trail := l.trails[supplier]; len(trail) > 0 {
			price := trail[len(trail)-1]
			offer.Price = &price
		}
		offers = append(offers, offer)
	}
	return offers
}

func (l *Ledger) persistLocked() error {
	if err := l.store.Save(l.snapshotLocked()); err != nil {
		return fmt.Errorf("persisting offer snapshot: %w", err)
	}
	return nil
}
