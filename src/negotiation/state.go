// Package negotiation tracks the per-supplier interaction state of one
// operator session as an explicit finite-state machine instead of ambient
// flags.
package negotiation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stage is a supplier's position in the negotiation flow.
type Stage string

const (
	StageIdle             Stage = "idle"
	StageDrafting         Stage = "drafting"
	StageAwaitingResponse Stage = "awaiting-response"
	StageResolved         Stage = "resolved"
)

// transitions is the closed legal-move table of the machine.
var transitions = map[Stage][]Stage{
	StageIdle:             {StageDrafting},
	StageDrafting:         {StageAwaitingResponse, StageIdle, StageResolved},
	StageAwaitingResponse: {StageIdle, StageResolved},
	StageResolved:         {},
}

// InvalidTransitionError reports an illegal stage change for a supplier.
type InvalidTransitionError struct {
	Supplier string
	From     Stage
	To       Stage
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("supplier %q: invalid negotiation transition %s -> %s", e.Supplier, e.From, e.To)
}

// OrderDetails are the operator-confirmed order parameters for the round
// of offer requests, including the acceptable price band the leverage
// analysis anchors on.
type OrderDetails struct {
	Quantity     int       `json:"quantity"`
	DeliveryDate time.Time `json:"delivery_date"`
	MinPrice     float64   `json:"min_price"`
	MaxPrice     float64   `json:"max_price"`
}

// Session is the single-operator negotiation session. All state that the
// interaction flow needs is carried here explicitly and passed through
// each call.
type Session struct {
	mu        sync.Mutex
	ID        string
	Customer  string
	Component string

	order    *OrderDetails
	stages   map[string]Stage
	startedAt time.Time
}

// NewSession starts a session for one customer/component pair.
func NewSession(customer, component string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Customer:  customer,
		Component: component,
		stages:    make(map[string]Stage),
		startedAt: time.Now(),
	}
}

// Stage returns the supplier's current stage, StageIdle if never touched.
func (s *Session) Stage(supplier string) Stage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stage, ok := s.stages[supplier]; ok {
		return stage
	}
	return StageIdle
}

// Transition moves the supplier to the target stage, failing on moves the
// legal-move table does not allow.
func (s *Session) Transition(supplier string, to Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.stages[supplier]
	if !ok {
		from = StageIdle
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			s.stages[supplier] = to
			return nil
		}
	}
	return &InvalidTransitionError{Supplier: supplier, From: from, To: to}
}

// Stages returns a copy of the per-supplier stage map.
func (s *Session) Stages() map[string]Stage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Stage, len(s.stages))
	for supplier, stage := range s.stages {
		out[supplier] = stage
	}
	return out
}

// SetOrder records the operator's confirmed order details.
func (s *Session) SetOrder(order OrderDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = &order
}

// Order returns the confirmed order details, or false if none were set.
func (s *Session) Order() (OrderDetails, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.order == nil {
		return OrderDetails{}, false
	}
	return *s.order, true
}
