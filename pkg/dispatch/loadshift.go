package dispatch

import (
	"math"

	"github.com/raterudder/retrofit/pkg/types"
)

// MicrogridMinimumLoadKW is the lowest load price-driven shedding reaches.
const MicrogridMinimumLoadKW = 50.0

// LoadShift sheds load in expensive hours and absorbs it in cheap ones.
type LoadShift struct {
	// Aggressiveness from 0 to 100.
	Aggressiveness float64
}

func (l LoadShift) Name() string { return "microgrid-load-shift" }

// Sensitivity is the fraction of load moved by a price signal, between 0.1
// and 0.5.
func (l LoadShift) Sensitivity() float64 {
	return 0.1 + l.Aggressiveness/100*0.4
}

func (l LoadShift) Step(t Tick) types.HourlyState {
	factor := 1.0
	if t.AvgPrice > 0 {
		factor = t.Price / t.AvgPrice
	}
	s := l.Sensitivity()
	base := t.Load

	var adjusted float64
	flow := types.FlowIdle
	switch {
	case factor > 1.2:
		adjusted = base * (1 - s)
		flow = types.FlowShed
	case factor < 0.8:
		adjusted = base * (1 + 0.8*s)
		flow = types.FlowAbsorb
	default:
		adjusted = base * (1 - l.Aggressiveness/100*0.05)
	}
	adjusted = math.Max(adjusted, math.Min(base, MicrogridMinimumLoadKW))

	return types.HourlyState{
		BaselineValue:   base,
		AdjustedValue:   adjusted,
		ActionMagnitude: adjusted - base,
		FlowState:       flow,
	}
}

// SolarOffset nets PV generation against load.
type SolarOffset struct{}

func (SolarOffset) Name() string { return "solar-offset" }

func (SolarOffset) Step(t Tick) types.HourlyState {
	s := types.HourlyState{
		BaselineValue:   t.Load,
		AdjustedValue:   math.Max(0, t.Load-t.Generation),
		ActionMagnitude: t.Generation,
		FlowState:       types.FlowIdle,
	}
	if t.Generation > 0 {
		s.FlowState = types.FlowDischarge
	}
	return s
}
