// Package agent exposes the deterministic data capabilities the hosted
// LLM collaborator may invoke during leverage analysis. The capability set
// is a closed enumeration with an explicit dispatch table; tool names
// arriving from the wire are mapped onto the enum and unknown names fail
// loudly instead of hitting a free-form lookup.
package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/username/dealdesk/backend/src/models"
	"github.com/username/dealdesk/backend/src/processors"
	"github.com/username/dealdesk/backend/src/utils"
)

// Capability identifies one data capability.
type Capability int

const (
	CapPriceToCostChange Capability = iota
	CapCostTrends
	CapHistoricSummary
	CapPriceRating
	CapCurrentPrices
)

// All enumerates every capability, in dispatch-table order.
var All = []Capability{
	CapPriceToCostChange,
	CapCostTrends,
	CapHistoricSummary,
	CapPriceRating,
	CapCurrentPrices,
}

var names = map[Capability]string{
	CapPriceToCostChange: "get_price_to_cost_change",
	CapCostTrends:        "get_trends",
	CapHistoricSummary:   "get_historic_values",
	CapPriceRating:       "get_rating_of_last_prices",
	CapCurrentPrices:     "actual_prices",
}

var descriptions = map[Capability]string{
	CapPriceToCostChange: "A value for each supplier: the sum of its yearly price growth minus the weighted cost growth of the underlying cost drivers. A high value means the supplier has expanded its margin, which is leverage to negotiate the price down.",
	CapCostTrends:        "The trend of each cost sector over the last years. Falling sector costs combined with rising product prices can be used to question the current price.",
	CapHistoricSummary:   "Historic average delivery quality and order volume per supplier. Low quality relative to others, or a current order volume well above the historic average, are negotiation leverage.",
	CapPriceRating:       "Whether each supplier's past prices were industry average, above it or below it.",
	CapCurrentPrices:     "The current offer or latest known base price of every supplier.",
}

// Name returns the wire name of the capability.
func (c Capability) Name() string { return names[c] }

// Description returns the capability description advertised to the agent.
func (c Capability) Description() string { return descriptions[c] }

// Parse maps a wire tool name onto the enumeration.
func Parse(name string) (Capability, error) {
	for c, n := range names {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", name)
}

// Snapshot is the frozen view of the stores a capability runs against.
// Capabilities are pure with respect to the snapshot.
type Snapshot struct {
	Transactions []models.Transaction
	BasePrices   []models.YearPrice
	Labor        *models.CostRateSeries
	Steel        *models.CostRateSeries
	Energy       *models.CostRateSeries
	Weights      models.CostFactorWeights
	Offers       []models.Offer
}

// Func is a capability implementation. Results are operator-readable
// strings, the form the collaborator consumes them in.
type Func func(*Snapshot) (string, error)

// Dispatch is the explicit capability dispatch table.
var Dispatch = map[Capability]Func{
	CapPriceToCostChange: priceToCostChange,
	CapCostTrends:        costTrends,
	CapHistoricSummary:   historicSummary,
	CapPriceRating:       priceRating,
	CapCurrentPrices:     currentPrices,
}

// Invoke runs one capability against the snapshot.
func Invoke(c Capability, snap *Snapshot) (string, error) {
	fn, ok := Dispatch[c]
	if !ok {
		return "", fmt.Errorf("capability %q has no implementation", c.Name())
	}
	return fn(snap)
}

func priceToCostChange(snap *Snapshot) (string, error) {
	proc := processors.NewLeverageProcessor(snap.Weights)
	signals := proc.Signals(snap.BasePrices, snap.Labor, snap.Steel, snap.Energy)
	if len(signals) == 0 {
		return "no price-to-cost change data available", nil
	}

	var b strings.Builder
	b.WriteString("price-to-cost change per supplier (positive = margin expansion):\n")
	for _, sig := range signals {
		fmt.Fprintf(&b, "%s: %.4f (periods used: %d, dropped: %d)\n",
			sig.Supplier, sig.Signal, sig.PeriodsUsed, sig.PeriodsDropped)
	}
	return b.String(), nil
}

func costTrends(snap *Snapshot) (string, error) {
	trends := processors.Trends(snap.Labor, snap.Steel, snap.Energy)
	return fmt.Sprintf("energy trends: %.4f, labor trends: %.4f, steel trends: %.4f",
		trends[snap.Energy.Factor], trends[snap.Labor.Factor], trends[snap.Steel.Factor]), nil
}

func historicSummary(snap *Snapshot) (string, error) {
	type agg struct {
		quality []float64
		volume  []float64
	}
	bySupplier := map[string]*agg{}
	var order []string
	for _, tx := range snap.Transactions {
		a, ok := bySupplier[tx.Supplier]
		if !ok {
			a = &agg{}
			bySupplier[tx.Supplier] = a
			order = append(order, tx.Supplier)
		}
		a.quality = append(a.quality, tx.Quality)
		a.volume = append(a.volume, float64(tx.Volume))
	}
	sort.Strings(order)

	var b strings.Builder
	b.WriteString("historic averages per supplier:\n")
	for _, supplier := range order {
		a := bySupplier[supplier]
		fmt.Fprintf(&b, "%s: quality %.3f, volume %.1f\n",
			supplier, utils.Mean(a.quality), utils.Mean(a.volume))
	}
	return b.String(), nil
}

func priceRating(snap *Snapshot) (string, error) {
	bySupplier := map[string][]string{}
	var order []string
	for _, yp := range snap.BasePrices {
		if yp.Classification == "" {
			continue
		}
		if _, ok := bySupplier[yp.Supplier]; !ok {
			order = append(order, yp.Supplier)
		}
		bySupplier[yp.Supplier] = append(bySupplier[yp.Supplier], yp.Classification)
	}
	sort.Strings(order)

	var b strings.Builder
	b.WriteString("price classification history per supplier (low/avg/high vs industry):\n")
	for _, supplier := range order {
		fmt.Fprintf(&b, "%s: %s\n", supplier, strings.Join(bySupplier[supplier], ", "))
	}
	return b.String(), nil
}

func currentPrices(snap *Snapshot) (string, error) {
	// Prefer the live offer; fall back to the latest known base price.
	latest := map[string]float64{}
	latestYear := map[string]int{}
	for _, yp := range snap.BasePrices {
		if yp.Known && yp.Year >= latestYear[yp.Supplier] {
			latestYear[yp.Supplier] = yp.Year
			latest[yp.Supplier] = yp.Price
		}
	}
	for _, offer := range snap.Offers {
		if offer.Price != nil {
			latest[offer.Supplier] = *offer.Price
		}
	}

	suppliers := make([]string, 0, len(latest))
	for supplier := range latest {
		suppliers = append(suppliers, supplier)
	}
	sort.Strings(suppliers)

	var b strings.Builder
	b.WriteString("current prices of all suppliers:\n")
	for _, supplier := range suppliers {
		fmt.Fprintf(&b, "%s: %.2f\n", supplier, latest[supplier])
	}
	return b.String(), nil
}
