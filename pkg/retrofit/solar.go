package retrofit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raterudder/retrofit/pkg/dispatch"
	"github.com/raterudder/retrofit/pkg/finance"
	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/pricing"
	"github.com/raterudder/retrofit/pkg/profile"
	"github.com/raterudder/retrofit/pkg/types"
)

const (
	// GridCarbonFactor is kg of CO2 per kWh of grid electricity.
	GridCarbonFactor = 0.5703
	// CoalPerKWh is kg of standard coal per kWh of grid electricity.
	CoalPerKWh = 0.404
)

// SolarInvestment is the PV system cost in the monetary unit. Capacity is in
// kWp and the EPC price in yuan/W, so kWp·yuan/W·1000/10⁴ reduces to /10.
func SolarInvestment(cfg types.SolarConfig, own types.OwnershipConfig) float64 {
	price := cfg.EPCPricePerW
	if own.Mode == types.OwnershipEPC && own.EPCUnitPrice > 0 {
		price = own.EPCUnitPrice
	}
	return cfg.CapacityKWp * price / 10
}

func (e Engine) evaluateSolar(ctx context.Context, s types.Scenario) (types.Result, error) {
	cfg := *s.Solar
	investment := SolarInvestment(cfg, s.Ownership)

	sunHours := cfg.DailySunHours
	if sunHours <= 0 {
		sunHours = profile.SunHours(s.Site.Province, s.Site.City)
	}
	days := orDefault(cfg.GenerationDays, types.DefaultSolarGenerationDays)
	generation := profile.AnnualSolarYield(cfg.CapacityKWp, sunHours, days, cfg.PRValuePct, cfg.AzimuthEffPct)

	// bills are compared against output before orientation losses
	billsBasis := profile.AnnualSolarYield(cfg.CapacityKWp, sunHours, days, cfg.PRValuePct, 100)
	sc, err := profile.ResolveSelfConsumption(cfg.SelfConsumption, s.Site, cfg.CapacityKWp, billsBasis, e.Estimator)
	if err != nil {
		return types.Result{}, err
	}
	rate := sc.Pct / 100

	curve, err := pricing.Curve(s.Price)
	if err != nil {
		return types.Result{}, fmt.Errorf("failed to resolve prices: %w", err)
	}
	reference, err := pricing.ReferencePrice(s.Price)
	if err != nil {
		return types.Result{}, fmt.Errorf("failed to resolve reference price: %w", err)
	}

	selfUse := generation * rate / types.MoneyUnit
	streams := finance.RevenueStreams{
		SelfUseEnergy:  selfUse,
		SelfUseValue:   selfUse * reference,
		GridRevenue:    generation * (1 - rate) / types.MoneyUnit * cfg.FeedInPrice,
		ReferencePrice: reference,
	}
	if s.Ownership.IsEMC() {
		streams.SidePayment = cfg.RoofAreaM2 * cfg.RoofRentPerM2 / types.MoneyUnit
	}

	fin := s.Finance
	var fixedOpex float64
	if cfg.OMCostPerW > 0 {
		fixedOpex = cfg.CapacityKWp * cfg.OMCostPerW / 10
		fin.OMRatePct = 0
	}

	years, summary := finance.Project(finance.Projection{
		Investment:  investment,
		Streams:     streams,
		Ownership:   s.Ownership,
		Finance:     fin,
		Horizon:     s.Horizon(),
		Degradation: finance.SolarDegradation(cfg.DegradationFirstYearPct, cfg.DegradationLinearPct),
		FixedOpex:   fixedOpex,
		Output:      generation,
	})

	states, err := dispatch.Simulate(
		ctx,
		dispatch.SolarOffset{},
		curve,
		profile.Day(profile.CommercialBaseline),
		profile.SolarDay(cfg.CapacityKWp),
	)
	if err != nil {
		return types.Result{}, err
	}
	annual := finance.Aggregate(states, days, firstYearOpex(years))
	annual.AnnualSaving = streams.Total()
	annual.NetBenefit = annual.AnnualSaving - annual.AnnualOpex

	log.Ctx(ctx).DebugContext(
		ctx,
		"solar generation",
		slog.Float64("generationKWh", generation),
		slog.Float64("sunHours", sunHours),
		slog.Float64("selfConsumptionPct", sc.Pct),
		slog.String("selfConsumptionMode", string(sc.Mode)),
	)

	notes := append([]string{
		fmt.Sprintf("first-year generation %.0f kWh at %.2f sun hours", generation, sunHours),
		fmt.Sprintf("reference price %.4f yuan/kWh", reference),
	}, sc.Notes...)

	return types.Result{
		Prices:             curve,
		Hourly:             states,
		Annual:             annual,
		Years:              years,
		Summary:            summary,
		SelfConsumptionPct: sc.Pct,
		Environmental: &types.Environmental{
			CarbonReductionTons: generation * GridCarbonFactor / 1000,
			CoalSavedTons:       generation * CoalPerKWh / 1000,
		},
		Notes: notes,
	}, nil
}
