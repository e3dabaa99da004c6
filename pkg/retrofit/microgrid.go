package retrofit

import (
	"context"
	"fmt"

	"github.com/raterudder/retrofit/pkg/dispatch"
	"github.com/raterudder/retrofit/pkg/finance"
	"github.com/raterudder/retrofit/pkg/pricing"
	"github.com/raterudder/retrofit/pkg/profile"
	"github.com/raterudder/retrofit/pkg/types"
)

// microgridPrices swaps the tariff for the volatile generator when dynamic
// pricing is on and no imported series was given.
func microgridPrices(s types.Scenario) types.PriceConfig {
	imported := s.Price.Mode == types.PriceModeImported && len(s.Price.Imported) > 0
	if s.Microgrid.DynamicPricing && !imported {
		return types.PriceConfig{Mode: types.PriceModeVolatile, Seed: s.Price.Seed}
	}
	return s.Price
}

func evaluateMicrogrid(ctx context.Context, s types.Scenario) (types.Result, error) {
	cfg := *s.Microgrid

	curve, err := pricing.Curve(microgridPrices(s))
	if err != nil {
		return types.Result{}, fmt.Errorf("failed to resolve prices: %w", err)
	}
	policy := dispatch.LoadShift{Aggressiveness: cfg.Aggressiveness}
	states, err := dispatch.Simulate(ctx, policy, curve, profile.Day(profile.CommercialBaseline), nil)
	if err != nil {
		return types.Result{}, err
	}

	days := orDefault(cfg.OperatingDays, types.DefaultMicrogridOperatingDays)
	annual := finance.Aggregate(states, days, cfg.AnnualOpexWan)

	years, summary := finance.Project(finance.Projection{
		Investment: cfg.InvestmentWan,
		Streams:    ownershipStreams(annual.AnnualSaving, pricing.Average(curve)),
		Ownership:  s.Ownership,
		Finance:    s.Finance,
		Horizon:    s.Horizon(),
		FixedOpex:  cfg.AnnualOpexWan,
		Output:     annual.AnnualEnergyAdjusted,
	})
	annual.AnnualOpex = firstYearOpex(years)
	annual.NetBenefit = annual.AnnualSaving - annual.AnnualOpex

	return types.Result{
		Prices:  curve,
		Hourly:  states,
		Annual:  annual,
		Years:   years,
		Summary: summary,
		Notes: []string{
			fmt.Sprintf("sensitivity %.2f, average price %.4f yuan/kWh", policy.Sensitivity(), pricing.Average(curve)),
		},
	}, nil
}
