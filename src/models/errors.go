package models

import (
	"fmt"
	"time"
)

// MissingReferencePointError reports that a cost-index series has no data
// point at or after the baseline transaction date, so the series cannot be
// normalized and trend estimation cannot proceed.
type MissingReferencePointError struct {
	Factor   string
	Baseline time.Time
}

func (e *MissingReferencePointError) Error() string {
	return fmt.Sprintf("cost-index series %q has no data point on or after the baseline date %s",
		e.Factor, e.Baseline.Format("2006-01-02"))
}

// UnknownTierError reports a supplier attribute outside {low, medium, high}.
type UnknownTierError struct {
	Supplier  string
	Attribute string
	Value     string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("supplier %q has unknown %s tier %q (expected low, medium or high)",
		e.Supplier, e.Attribute, e.Value)
}

// NoBaselineError reports that no transaction history exists for the
// customer, so there is no baseline purchase to estimate a trend from.
type NoBaselineError struct {
	Customer string
}

func (e *NoBaselineError) Error() string {
	return fmt.Sprintf("no purchase history found for customer %q", e.Customer)
}
