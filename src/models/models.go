package models

import "time"

// Tier is the coarse qualitative rating used for supplier reliability and
// quality. Only the three values below are valid; anything else is a data
// error surfaced as UnknownTierError by the scoring engine.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// CostIndexPoint is one observation of a daily cost-driver development
// series (labor, steel or energy).
type CostIndexPoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// CostIndexSeries is an ordered daily price series for one cost driver.
// Invariants (enforced by the parser): dates strictly increasing, price > 0.
type CostIndexSeries struct {
	Factor string           `json:"factor"`
	Points []CostIndexPoint `json:"points"`
}

// CostRatePoint is one observation of a yearly change-rate series. A rate
// of 1.03 means the driver cost grew 3% over that year.
type CostRatePoint struct {
	Year int     `json:"year"`
	Rate float64 `json:"change_rate"`
}

// CostRateSeries is the yearly change-rate history for one cost driver,
// consumed by the leverage estimator.
type CostRateSeries struct {
	Factor string          `json:"factor"`
	Points []CostRatePoint `json:"points"`
}

// Transaction is a single historical purchase record. Immutable once
// recorded.
type Transaction struct {
	Customer     string    `json:"customer"`
	Supplier     string    `json:"supplier"`
	DecisionDate time.Time `json:"decision_date"`
	Price        float64   `json:"price"`
	Volume       int       `json:"volume"`
	ArrivalDelay int       `json:"arrival_delay"`
	Reliability  int       `json:"reliability"`
	Quality      float64   `json:"quality"`
}

// SupplierProfile holds the static supplier attributes for one run.
type SupplierProfile struct {
	Supplier    string `json:"supplier"`
	Reliability Tier   `json:"reliability"`
	Quality     Tier   `json:"quality"`
}

// YearPrice is a supplier's base price for one year. Known is false when
// no price was recorded for that period; the price value is then
// meaningless and must not be read as zero.
type YearPrice struct {
	Supplier       string  `json:"supplier"`
	Year           int     `json:"year"`
	Price          float64 `json:"base_price"`
	Known          bool    `json:"known"`
	Classification string  `json:"price_classification"` // low | avg | high
}

// CostFactorWeights are the declared composite weights per driver, loaded
// from the weight table. They must sum to 1.0.
type CostFactorWeights struct {
	Labor  float64 `json:"labor"`
	Steel  float64 `json:"steel"`
	Energy float64 `json:"energy"`
}

// Offer is the mutable per-supplier negotiation row persisted in the
// offer/leverage table. Price is overwritten on each negotiation round.
type Offer struct {
	Supplier      string   `json:"supplier"`
	Price         *float64 `json:"offer,omitempty"`
	LeverageNotes string   `json:"leverage,omitempty"`
}

// SupplierScore is the comparable multi-criteria triple for one supplier.
// PriceScore is fractional when offers tie (shared mean rank).
type SupplierScore struct {
	Supplier         string   `json:"supplier"`
	ReliabilityScore int      `json:"reliability_score"`
	QualityScore     int      `json:"quality_score"`
	PriceScore       *float64 `json:"price_score,omitempty"`
}

// CompositePoint is one step of the derived composite/estimated series
// produced by the trend estimator.
type CompositePoint struct {
	Date      time.Time `json:"date"`
	Labor     float64   `json:"labor"`
	Steel     float64   `json:"steel"`
	Energy    float64   `json:"energy"`
	Composite float64   `json:"composite"`
	Estimated float64   `json:"estimated"`
}

// LatestPurchase is the baseline transaction for trend estimation: the
// customer's purchase with the maximum decision date.
type LatestPurchase struct {
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
	Supplier string    `json:"supplier"`
}

// LeverageSignal is the per-supplier margin-expansion scalar. Positive
// means price growth outpaced cost growth over the joined periods.
type LeverageSignal struct {
	Supplier       string  `json:"supplier"`
	Signal         float64 `json:"signal"`
	PeriodsUsed    int     `json:"periods_used"`
	PeriodsDropped int     `json:"periods_dropped"`
}
