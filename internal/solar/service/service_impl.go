package service

import (
	"context"
	"math"

	"github.com/helioscrm/helios/internal/config"
	"github.com/helioscrm/helios/internal/observability/metrics"
	"github.com/helioscrm/helios/internal/solar/domain"
	"github.com/helioscrm/helios/internal/solar/estimator"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// defaultProductionPerKwp guards the sizing stage against a non-positive
// per-kWp figure. Unreachable given the upstream estimate guards; kept as
// a last line of defence, the exact value carries no meaning.
const defaultProductionPerKwp = 1400

// maxSystemSizeKwp bounds plausible derivations; anything above points at
// corrupted input or a derivation defect.
const maxSystemSizeKwp = 10_000

type Params struct {
	fx.In

	Log     *zap.Logger
	Solar   *config.SolarConfigHolder
	Client  domain.IrradianceClient
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	solar   *config.SolarConfigHolder
	client  domain.IrradianceClient
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("solar.service"),
		solar:   p.Solar,
		client:  p.Client,
		metrics: p.Metrics,
	}
}

// Calculate runs validate -> acquire production estimate -> size ->
// financials. Upstream failures degrade to the fallback estimator and are
// never surfaced to the caller.
func (s *Service) Calculate(ctx context.Context, req domain.CalculationRequest) (domain.CalculationResult, error) {
	if err := req.Validate(); err != nil {
		return domain.CalculationResult{}, err
	}

	estimate := s.acquireEstimate(ctx, req)

	sizing, err := s.size(req.Consumption, estimate)
	if err != nil {
		return domain.CalculationResult{}, err
	}

	financials := s.financials(sizing)

	return domain.CalculationResult{
		SystemSize:        sizing.SystemSizeKwp,
		Panels:            sizing.PanelCount,
		Production:        sizing.TotalAnnualProdKwh,
		Savings:           financials.AnnualSavings,
		ROI:               financials.AnnualROI,
		AnnualROI:         financials.AnnualROI,
		MonthlyProduction: sizing.MonthlyProduction,
		DataSource:        estimate.Source,
	}, nil
}

// acquireEstimate asks the irradiance service once and falls back to the
// analytical estimator on any failure or invalid figure. No retry loop.
func (s *Service) acquireEstimate(ctx context.Context, req domain.CalculationRequest) domain.ProductionEstimate {
	estimate, err := s.client.FetchAnnualProduction(
		ctx,
		req.Location.Lat,
		req.Location.Lng,
		req.RoofTilt,
		req.RoofOrientation.Azimuth(),
	)
	if err == nil && validAnnual(estimate.AnnualPerKwp) {
		return estimate
	}

	reason := "non-positive annual figure"
	if math.IsNaN(estimate.AnnualPerKwp) || math.IsInf(estimate.AnnualPerKwp, 0) {
		reason = "non-finite annual figure"
	}
	if err != nil {
		reason = err.Error()
	}
	s.log.Warn("irradiance lookup failed, using fallback estimator",
		zap.Float64("lat", req.Location.Lat),
		zap.Float64("lng", req.Location.Lng),
		zap.String("reason", reason),
	)
	if s.metrics != nil {
		s.metrics.PVGISFallbacks.Inc()
	}

	return domain.ProductionEstimate{
		AnnualPerKwp: estimator.Estimate(req.Location.Lat, req.RoofOrientation, req.RoofTilt),
		Source:       domain.SourceFallback,
		SourceReason: reason,
	}
}

func (s *Service) size(consumption float64, estimate domain.ProductionEstimate) (domain.SystemSizing, error) {
	perKwp := estimate.AnnualPerKwp
	usedDefault := false
	if !validAnnual(perKwp) {
		perKwp = defaultProductionPerKwp
		usedDefault = true
	}

	// Round up to the nearest 0.1 kWp.
	size := math.Ceil(consumption/perKwp*10) / 10
	if size <= 0 || size > maxSystemSizeKwp {
		s.log.Error("implausible derived system size",
			zap.Float64("system_size_kwp", size),
			zap.Float64("consumption", consumption),
			zap.Float64("production_per_kwp", perKwp),
		)
		return domain.SystemSizing{}, domain.ErrImplausibleSizing
	}

	panelWattage := s.solar.Get().PanelWattage
	panels := int(math.Ceil(size * 1000 / float64(panelWattage)))

	monthly := make([]int, 0, len(estimate.MonthlyPerKwp))
	for _, m := range estimate.MonthlyPerKwp {
		monthly = append(monthly, int(math.Round(m*size)))
	}

	return domain.SystemSizing{
		SystemSizeKwp:      size,
		PanelCount:         panels,
		TotalAnnualProdKwh: math.Round(perKwp * size),
		ProductionPerKwp:   perKwp,
		MonthlyProduction:  monthly,
		UsedDefaultPerKwp:  usedDefault,
	}, nil
}

func (s *Service) financials(sizing domain.SystemSizing) domain.FinancialSummary {
	cfg := s.solar.Get()

	savings := math.Round(sizing.TotalAnnualProdKwh * cfg.ElectricityPriceEUR)
	if savings < 0 {
		savings = 0
	}

	cost := sizing.SystemSizeKwp * cfg.CostPerKwEUR
	if cost < 0 {
		cost = 0
	}

	// Division-by-zero returns a usable zero ROI rather than an error.
	roi := 0.0
	if cost > 0 {
		roi = math.Round(savings/cost*100*10) / 10
	}

	return domain.FinancialSummary{
		AnnualSavings: savings,
		SystemCost:    cost,
		AnnualROI:     roi,
	}
}

func validAnnual(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
