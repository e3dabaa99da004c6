package finance

import (
	"math"

	"github.com/raterudder/retrofit/pkg/types"
)

const (
	irrInitialGuess = 0.1
	irrStep         = 0.01
	irrIterations   = 30
	irrTolerance    = 0.1
)

// NPV discounts cashFlows at rate, where cashFlows[0] is undiscounted.
func NPV(cashFlows []float64, rate float64) float64 {
	var npv float64
	for i, cf := range cashFlows {
		npv += cf / math.Pow(1+rate, float64(i))
	}
	return npv
}

// IRR walks the discount rate in 1% steps from 10% towards a root of the NPV.
// It is undefined unless cashFlows starts with a positive investment.
func IRR(cashFlows []float64) types.IRR {
	if len(cashFlows) < 2 || cashFlows[0] >= 0 {
		return types.IRR{}
	}
	guess := irrInitialGuess
	for i := 0; i < irrIterations; i++ {
		npv := NPV(cashFlows, guess)
		if math.Abs(npv) < irrTolerance {
			return types.IRR{Pct: guess * 100, Converged: true, Defined: true}
		}
		if npv > 0 {
			guess += irrStep
		} else {
			guess -= irrStep
		}
	}
	return types.IRR{Pct: guess * 100, Defined: true}
}

// Payback interpolates within the first year whose cumulative cash flow
// turns non-negative. When that never happens Years is the horizon. It is
// undefined without a negative outlay in year 0.
func Payback(cashFlows []float64) types.Payback {
	if len(cashFlows) == 0 || cashFlows[0] >= 0 {
		return types.Payback{}
	}
	cumulative := cashFlows[0]
	for y := 1; y < len(cashFlows); y++ {
		prev := cumulative
		cumulative += cashFlows[y]
		if cumulative >= 0 {
			return types.Payback{
				Years:     float64(y-1) + math.Abs(prev)/cashFlows[y],
				Recovered: true,
				Defined:   true,
			}
		}
	}
	return types.Payback{Years: float64(len(cashFlows) - 1), Defined: true}
}

// ROI is the net benefit as a percentage of the investment.
func ROI(netBenefit, investment float64) types.Metric {
	if investment <= 0 {
		return types.Metric{}
	}
	return types.Metric{Value: netBenefit / investment * 100, Defined: true}
}
