package retrofit

import (
	"context"
	"fmt"

	"github.com/raterudder/retrofit/pkg/dispatch"
	"github.com/raterudder/retrofit/pkg/finance"
	"github.com/raterudder/retrofit/pkg/pricing"
	"github.com/raterudder/retrofit/pkg/types"
)

func evaluateHVAC(ctx context.Context, s types.Scenario) (types.Result, error) {
	cfg := *s.HVAC

	curve, err := pricing.Curve(s.Price)
	if err != nil {
		return types.Result{}, fmt.Errorf("failed to resolve prices: %w", err)
	}
	price, err := pricing.ReferencePrice(s.Price)
	if err != nil {
		return types.Result{}, fmt.Errorf("failed to resolve reference price: %w", err)
	}

	outcomes := make([]dispatch.HVACOutcome, 0, len(cfg.Buildings))
	policies := make(dispatch.Stack, 0, len(cfg.Buildings))
	notes := make([]string, 0, len(cfg.Buildings))
	for i, b := range cfg.Buildings {
		if b.Inactive {
			continue
		}
		o := dispatch.HVACSubstitution(b, cfg.CurrentAvgCOP, price, cfg.GasPrice)
		outcomes = append(outcomes, o)
		policies = append(policies, dispatch.NewHVACSchedule(b, o))

		name := b.Name
		if name == "" {
			name = fmt.Sprintf("building %d", i+1)
		}
		notes = append(notes, fmt.Sprintf("%s: %s COP %.2f, saving %.2f yuan/year", name, b.Strategy, o.TargetCOP, o.Saving))
	}
	total := dispatch.Sum(outcomes)

	states, err := dispatch.Simulate(ctx, policies, curve, make([]float64, 24), nil)
	if err != nil {
		return types.Result{}, err
	}

	investment := total.Investment / types.MoneyUnit
	saving := total.Saving / types.MoneyUnit
	years, summary := finance.Project(finance.Projection{
		Investment: investment,
		Streams:    ownershipStreams(saving, price),
		Ownership:  s.Ownership,
		Finance:    s.Finance,
		Horizon:    s.Horizon(),
		Output:     total.BaselineKWh - total.RetrofitKWh,
	})

	// annual figures come from run hours rather than the representative day
	annual := finance.Aggregate(states, 0, firstYearOpex(years))
	annual.AnnualEnergyBase = total.BaselineKWh
	annual.AnnualEnergyAdjusted = total.RetrofitKWh
	annual.AnnualCostBase = total.BaselineCost / types.MoneyUnit
	annual.AnnualCostAdjusted = total.RetrofitCost / types.MoneyUnit
	annual.AnnualSaving = saving
	annual.NetBenefit = saving - annual.AnnualOpex

	return types.Result{
		Prices:  curve,
		Hourly:  states,
		Annual:  annual,
		Years:   years,
		Summary: summary,
		Notes:   notes,
	}, nil
}
