package services

import (
	"fmt"

	gocache "github.com/patrickmn/go-cache"
	"github.com/username/dealdesk/backend/src/agent"
	"github.com/username/dealdesk/backend/src/config"
	"github.com/username/dealdesk/backend/src/ledger"
	"github.com/username/dealdesk/backend/src/logger"
	"github.com/username/dealdesk/backend/src/models"
	"github.com/username/dealdesk/backend/src/parsers"
	"github.com/username/dealdesk/backend/src/processors"
	"github.com/username/dealdesk/backend/src/utils"
)

const datasetsCacheKey = "analysis:datasets"

// datasets is the parsed read-only data behind one analysis run.
type datasets struct {
	transactions []models.Transaction
	profiles     []models.SupplierProfile
	basePrices   []models.YearPrice
	weights      models.CostFactorWeights

	laborIndex  *models.CostIndexSeries
	steelIndex  *models.CostIndexSeries
	energyIndex *models.CostIndexSeries

	laborRates  *models.CostRateSeries
	steelRates  *models.CostRateSeries
	energyRates *models.CostRateSeries
}

type analysisServiceImpl struct {
	ledger *ledger.Ledger
	cache  *gocache.Cache
}

// NewAnalysisService builds the analytics service over the offer ledger.
// Parsed datasets are cached; every mutation of the underlying files must
// go through Invalidate.
func NewAnalysisService(ldg *ledger.Ledger, cache *gocache.Cache) AnalysisService {
	return &analysisServiceImpl{ledger: ldg, cache: cache}
}

func (s *analysisServiceImpl) loadDatasets() (*datasets, error) {
	if cached, found := s.cache.Get(datasetsCacheKey); found {
		if ds, ok := cached.(*datasets); ok {
			return ds, nil
		}
	}

	cfg := config.Cfg
	ds := &datasets{}
	var err error

	if ds.transactions, err = parsers.LoadTransactions(cfg.TransactionsPath); err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	if ds.profiles, err = parsers.LoadSupplierProfiles(cfg.SupplierProfilesPath); err != nil {
		return nil, fmt.Errorf("loading supplier profiles: %w", err)
	}
	if ds.basePrices, err = parsers.LoadSupplierYearPrices(cfg.SupplierBasePricePath); err != nil {
		return nil, fmt.Errorf("loading supplier base prices: %w", err)
	}

	weights, err := parsers.LoadCostFactorWeights(cfg.CostFactorWeightsPath)
	if err != nil {
		return nil, fmt.Errorf("loading cost factor weights: %w", err)
	}
	ds.weights = *weights

	if ds.laborIndex, err = parsers.LoadCostIndexSeries("labor", cfg.LaborDevelopmentPath); err != nil {
		return nil, fmt.Errorf("loading labor development series: %w", err)
	}
	if ds.steelIndex, err = parsers.LoadCostIndexSeries("steel", cfg.SteelDevelopmentPath); err != nil {
		return nil, fmt.Errorf("loading steel development series: %w", err)
	}
	if ds.energyIndex, err = parsers.LoadCostIndexSeries("energy", cfg.EnergyDevelopmentPath); err != nil {
		return nil, fmt.Errorf("loading energy development series: %w", err)
	}

	if ds.laborRates, err = parsers.LoadCostRateSeries("labor", cfg.LaborRatesPath); err != nil {
		return nil, fmt.Errorf("loading labor rate series: %w", err)
	}
	if ds.steelRates, err = parsers.LoadCostRateSeries("steel", cfg.SteelRatesPath); err != nil {
		return nil, fmt.Errorf("loading steel rate series: %w", err)
	}
	if ds.energyRates, err = parsers.LoadCostRateSeries("energy", cfg.EnergyRatesPath); err != nil {
		return nil, fmt.Errorf("loading energy rate series: %w", err)
	}

	s.cache.Set(datasetsCacheKey, ds, gocache.DefaultExpiration)
	logger.L.Info("Datasets loaded",
		"transactions", len(ds.transactions),
		"suppliers", len(ds.profiles),
		"basePriceRows", len(ds.basePrices))
	return ds, nil
}

func (s *analysisServiceImpl) Invalidate() {
	s.cache.Delete(datasetsCacheKey)
}

// marketComparison maps the latest known industry classification of the
// baseline supplier onto an operator-facing verdict.
func marketComparison(basePrices []models.YearPrice, supplier string) string {
	classification := ""
	latestYear := 0
	for _, yp := range basePrices {
		if yp.Supplier == supplier && yp.Classification != "" && yp.Year >= latestYear {
			latestYear = yp.Year
			classification = yp.Classification
		}
	}
	switch classification {
	case "high":
		return "The price you paid was above the industry average."
	case "low":
		return "The price you paid was below the industry average."
	case "avg":
		return "The price you paid was in line with the industry average."
	default:
		return "No industry price classification is available for this supplier."
	}
}

func (s *analysisServiceImpl) MarketBriefing() (*MarketBriefing, error) {
	ds, err := s.loadDatasets()
	if err != nil {
		return nil, err
	}

	baseline, err := parsers.LatestPurchase(ds.transactions, config.Cfg.Customer)
	if err != nil {
		return nil, err
	}

	trend, err := processors.NewTrendProcessor(ds.weights).Estimate(*baseline, ds.laborIndex, ds.steelIndex, ds.energyIndex)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Price estimate unchanged at %.2f.", baseline.Price)
	if len(trend.Points) > 0 {
		direction := "increased"
		if trend.ChangePercent < 0 {
			direction = "decreased"
		}
		message = fmt.Sprintf("Since your last purchase at %.2f on %s, the estimated fair price has %s by %.1f%% to %.2f.",
			baseline.Price, utils.FormatDateLong(baseline.Date), direction,
			utils.RoundFloat(trend.ChangePercent, 1), utils.RoundFloat(trend.LatestEstimate, 2))
	}

	return &MarketBriefing{
		Customer:         config.Cfg.Customer,
		Component:        config.Cfg.Component,
		Baseline:         *baseline,
		Weights:          ds.weights,
		Trend:            trend,
		Message:          message,
		MarketComparison: marketComparison(ds.basePrices, baseline.Supplier),
	}, nil
}

func (s *analysisServiceImpl) Suppliers() ([]SupplierEntry, error) {
	ds, err := s.loadDatasets()
	if err != nil {
		return nil, err
	}

	entries := make([]SupplierEntry, 0, len(ds.profiles))
	for _, profile := range ds.profiles {
		entry := SupplierEntry{Profile: profile}
		if price, ok := parsers.LastPriceFrom(ds.transactions, config.Cfg.Customer, profile.Supplier); ok {
			entry.LastPrice = &price
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *analysisServiceImpl) Scores() ([]models.SupplierScore, error) {
	ds, err := s.loadDatasets()
	if err != nil {
		return nil, err
	}

	offers := make(map[string]*float64)
	for _, offer := range s.ledger.Snapshot() {
		offers[offer.Supplier] = offer.Price
	}
	return processors.NewScoringProcessor().Score(ds.profiles, offers)
}

func (s *analysisServiceImpl) Signals() ([]models.LeverageSignal, error) {
	ds, err := s.loadDatasets()
	if err != nil {
		return nil, err
	}
	proc := processors.NewLeverageProcessor(ds.weights)
	return proc.Signals(ds.basePrices, ds.laborRates, ds.steelRates, ds.energyRates), nil
}

// Snapshot freezes the stores into the view the capability dispatch table
// runs against.
func (s *analysisServiceImpl) Snapshot() (*agent.Snapshot, error) {
	ds, err := s.loadDatasets()
	if err != nil {
		return nil, err
	}
	return &agent.Snapshot{
		Transactions: ds.transactions,
		BasePrices:   ds.basePrices,
		Labor:        ds.laborRates,
		Steel:        ds.steelRates,
		Energy:       ds.energyRates,
		Weights:      ds.weights,
		Offers:       s.ledger.Snapshot(),
	}, nil
}
