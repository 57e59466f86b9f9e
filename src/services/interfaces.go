package services

import (
	"github.com/username/dealdesk/backend/src/agent"
	"github.com/username/dealdesk/backend/src/models"
	"github.com/username/dealdesk/backend/src/processors"
)

// MarketBriefing aggregates everything the market view renders: the
// baseline purchase, the declared cost weights, the projected trend and
// the comparison of the paid price against the industry classification.
type MarketBriefing struct {
	Customer         string                  `json:"customer"`
	Component        string                  `json:"component"`
	Baseline         models.LatestPurchase   `json:"baseline"`
	Weights          models.CostFactorWeights `json:"weights"`
	Trend            *processors.TrendResult `json:"trend"`
	Message          string                  `json:"message"`
	MarketComparison string                  `json:"market_comparison"`
}

// SupplierEntry is one row of the supplier overview: the static profile
// joined with the customer's last price from that supplier, if any.
type SupplierEntry struct {
	Profile   models.SupplierProfile `json:"profile"`
	LastPrice *float64               `json:"last_price,omitempty"`
}

// AnalysisService runs the deterministic analytics over the read-only
// datasets and the live offer ledger.
type AnalysisService interface {
	MarketBriefing() (*MarketBriefing, error)
	Suppliers() ([]SupplierEntry, error)
	Scores() ([]models.SupplierScore, error)
	Signals() ([]models.LeverageSignal, error)
	Snapshot() (*agent.Snapshot, error)
	Invalidate()
}

// EmailService dispatches drafted negotiation emails. In the demo flow
// every supplier-bound mail is routed to the operator's inbox.
type EmailService interface {
	SendNegotiationEmail(supplier, subject, body string) error
}
