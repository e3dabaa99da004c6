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

// StorageInvestment is the battery cost in the monetary unit. EPC contracts
// with a unit price replace the configured cost per kWh.
func StorageInvestment(cfg types.StorageConfig, own types.OwnershipConfig) float64 {
	unitCost := cfg.UnitCost
	if own.Mode == types.OwnershipEPC && own.EPCUnitPrice > 0 {
		unitCost = own.EPCUnitPrice
	}
	return cfg.CapacityKWh * unitCost / types.MoneyUnit
}

func storagePolicy(cfg types.StorageConfig) dispatch.Policy {
	if cfg.Strategy == types.StorageValueStacking {
		return dispatch.StorageValueStacking{
			PowerKW:           cfg.PowerKW,
			RTE:               cfg.RTE(),
			PVSelfConsumption: cfg.PVSelfConsumption,
			DemandManagement:  cfg.DemandManagement,
			DynamicPricing:    cfg.DynamicPricing,
			DemandThresholdKW: cfg.DemandThresholdKW,
		}
	}
	return dispatch.StorageSchedule{
		Strategy: cfg.Strategy,
		PowerKW:  cfg.PowerKW,
		RTE:      cfg.RTE(),
	}
}

func evaluateStorage(ctx context.Context, s types.Scenario) (types.Result, error) {
	cfg := *s.Storage
	investment := StorageInvestment(cfg, s.Ownership)

	curve, err := pricing.Curve(s.Price)
	if err != nil {
		return types.Result{}, fmt.Errorf("failed to resolve prices: %w", err)
	}
	var generation []float64
	if cfg.PVSelfConsumption && cfg.PVCapacityKWp > 0 {
		generation = profile.SolarDay(cfg.PVCapacityKWp)
	}
	states, err := dispatch.Simulate(ctx, storagePolicy(cfg), curve, profile.Day(profile.StorageSiteLoad), generation)
	if err != nil {
		return types.Result{}, err
	}

	days := orDefault(cfg.OperatingDays, types.DefaultStorageOperatingDays)
	arbitrage := finance.DailySaving(states) * float64(days) / types.MoneyUnit

	var demand float64
	if cfg.Strategy == types.StorageValueStacking && cfg.DemandManagement {
		charge := cfg.DemandChargePerKWMonth
		if charge <= 0 {
			charge = types.DefaultDemandChargePerKWMonth
		}
		demand = finance.PeakReduction(states) * charge * 12 / types.MoneyUnit
	}
	aux := AuxiliaryCost(cfg, days, pricing.Average(curve))
	saving := max(0, arbitrage+demand-aux)

	years, summary := finance.Project(finance.Projection{
		Investment:  investment,
		Streams:     ownershipStreams(saving, pricing.Average(curve)),
		Ownership:   s.Ownership,
		Finance:     s.Finance,
		Horizon:     s.Horizon(),
		Degradation: finance.FlatDegradation(cfg.DegradationPctPerYear),
	})
	annual := finance.Aggregate(states, days, firstYearOpex(years))
	annual.AnnualSaving = saving
	annual.NetBenefit = saving - annual.AnnualOpex

	log.Ctx(ctx).DebugContext(
		ctx,
		"storage savings",
		slog.Float64("arbitrage", arbitrage),
		slog.Float64("demand", demand),
		slog.Float64("aux", aux),
	)

	notes := []string{
		fmt.Sprintf("usable capacity %.1f kWh", cfg.UsableCapacityKWh()),
		fmt.Sprintf("arbitrage %.2f, demand charge %.2f per year", arbitrage, demand),
	}
	if aux > 0 {
		notes = append(notes, fmt.Sprintf("auxiliary consumption %.2f per year", aux))
	}
	cycles := CyclesPerDay(states, cfg.UsableCapacityKWh()) * float64(days*s.Horizon())
	if cfg.CycleLife > 0 && cycles > float64(cfg.CycleLife) {
		notes = append(notes, fmt.Sprintf("%.0f equivalent cycles over the horizon exceed the cycle life of %d", cycles, cfg.CycleLife))
	}

	return types.Result{
		Prices:  curve,
		Hourly:  states,
		Annual:  annual,
		Years:   years,
		Summary: summary,
		Notes:   notes,
	}, nil
}

// AuxiliaryCost is the yearly cost of cooling and BMS draw in the monetary
// unit. Only advanced mode models it; the draw is AuxPowerPct of rated power
// around the clock on operating days, bought at the average price.
func AuxiliaryCost(cfg types.StorageConfig, days int, avgPrice float64) float64 {
	if !cfg.AdvancedMode || cfg.AuxPowerPct <= 0 {
		return 0
	}
	kw := cfg.PowerKW * cfg.AuxPowerPct / 100
	return kw * 24 * float64(days) * avgPrice / types.MoneyUnit
}

// CyclesPerDay is the discharged energy of a simulated day over the usable
// capacity.
func CyclesPerDay(states []types.HourlyState, usableKWh float64) float64 {
	if usableKWh <= 0 {
		return 0
	}
	var discharged float64
	for _, st := range states {
		if st.ActionMagnitude > 0 {
			discharged += st.ActionMagnitude
		}
	}
	return discharged / usableKWh
}

func firstYearOpex(years []types.YearFinancials) float64 {
	if len(years) < 2 {
		return 0
	}
	return years[1].Opex
}
