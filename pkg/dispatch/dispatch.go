// Package dispatch decides what a flexible asset does in each hour of a
// representative day.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/pricing"
	"github.com/raterudder/retrofit/pkg/types"
)

// Tick is everything a policy sees for one hour.
type Tick struct {
	Hour       int
	Price      float64
	AvgPrice   float64
	Load       float64
	Generation float64
}

// Policy decides an asset's action for one hour. Implementations keep no
// state between hours.
type Policy interface {
	Name() string
	Step(t Tick) types.HourlyState
}

// Simulate runs policy over a 24-hour day. generation may be nil.
func Simulate(
	ctx context.Context,
	policy Policy,
	prices []types.HourlyPricePoint,
	load []float64,
	generation []float64,
) ([]types.HourlyState, error) {
	if len(prices) != 24 {
		return nil, types.NewConfigurationError("prices", "expected 24 hours, got %d", len(prices))
	}
	if len(load) != 24 {
		return nil, types.NewConfigurationError("load", "expected 24 hours, got %d", len(load))
	}
	if generation != nil && len(generation) != 24 {
		return nil, types.NewConfigurationError("generation", "expected 24 hours, got %d", len(generation))
	}

	avg := pricing.Average(prices)
	log.Ctx(ctx).DebugContext(
		ctx,
		"simulating day",
		slog.String("policy", policy.Name()),
		slog.Float64("avgPrice", avg),
	)

	states := make([]types.HourlyState, 0, 24)
	for h := 0; h < 24; h++ {
		t := Tick{
			Hour:     h,
			Price:    prices[h].Price,
			AvgPrice: avg,
			Load:     load[h],
		}
		if generation != nil {
			t.Generation = generation[h]
		}
		s := policy.Step(t)
		s.Hour = h
		s.Price = t.Price
		states = append(states, s)
	}
	return states, nil
}

func flowFromAction(action float64) types.FlowState {
	switch {
	case action < 0:
		return types.FlowCharge
	case action > 0:
		return types.FlowDischarge
	default:
		return types.FlowIdle
	}
}

// Stack runs several policies against the same tick and sums their states.
// The first non-idle flow state wins.
type Stack []Policy

func (s Stack) Name() string { return "stack" }

func (s Stack) Step(t Tick) types.HourlyState {
	out := types.HourlyState{FlowState: types.FlowIdle}
	for _, p := range s {
		st := p.Step(t)
		out.BaselineValue += st.BaselineValue
		out.AdjustedValue += st.AdjustedValue
		out.ActionMagnitude += st.ActionMagnitude
		if out.FlowState == types.FlowIdle {
			out.FlowState = st.FlowState
		}
	}
	return out
}
