package models

// StrategyStep is a single step of a formalized negotiation strategy.
type StrategyStep struct {
	Action   string `json:"action"`
	Leverage string `json:"leverage"`
}

// StrategyDocument is the structured strategy artifact produced by the
// strategy-formalizer collaborator and rendered by the UI.
type StrategyDocument struct {
	Title string         `json:"title"`
	Steps []StrategyStep `json:"steps"`
}

// EmailMessage is one entry of a per-supplier negotiation email thread.
// Offer is set on supplier replies that carry a counter-offer.
type EmailMessage struct {
	ID       string   `json:"id"`
	Supplier string   `json:"supplier"`
	Role     string   `json:"role"` // customer | supplier
	Body     string   `json:"body"`
	Offer    *float64 `json:"offer,omitempty"`
	SentAt   string   `json:"sent_at"`
}
