package dispatch

import (
	"github.com/raterudder/retrofit/pkg/types"
)

const (
	// gasHeatRate is kWh of electric-equivalent output per m3 of gas.
	gasHeatRate = 3.5
	// cchpByproductKWhPerM3 is electricity generated per m3 burnt in CCHP.
	cchpByproductKWhPerM3 = 0.5
)

// HVACStrategySpec is the default efficiency and cost of a retrofit level.
type HVACStrategySpec struct {
	COP           float64
	UnitCostPerKW float64 // yuan/kW
}

// HVACStrategies lists the built-in retrofit levels.
var HVACStrategies = map[types.HVACStrategy]HVACStrategySpec{
	types.HVACBasic:        {COP: 4.5, UnitCostPerKW: 1500},
	types.HVACIntermediate: {COP: 5.2, UnitCostPerKW: 2500},
	types.HVACAdvanced:     {COP: 6.2, UnitCostPerKW: 4000},
	types.HVACCCHP:         {COP: 7.5, UnitCostPerKW: 8000},
}

// HVACOutcome is the annual effect of retrofitting one building. Money is in
// yuan.
type HVACOutcome struct {
	Name            string  `json:"name,omitempty"`
	TargetCOP       float64 `json:"targetCOP"`
	OldKW           float64 `json:"oldKW"`
	NewKW           float64 `json:"newKW"`
	BaselineKWh     float64 `json:"baselineKWh"`
	RetrofitKWh     float64 `json:"retrofitKWh"`
	BaselineCost    float64 `json:"baselineCost"`
	RetrofitCost    float64 `json:"retrofitCost"`
	GasM3           float64 `json:"gasM3,omitempty"`
	GasCost         float64 `json:"gasCost,omitempty"`
	ByproductCredit float64 `json:"byproductCredit,omitempty"`
	Saving          float64 `json:"saving"`
	Investment      float64 `json:"investment"`
}

// HVACSubstitution models replacing a building's plant with the given
// strategy. price is the electricity price (yuan/kWh) and gasPrice the gas
// price (yuan/m3). CCHP replaces grid electricity with gas and credits its
// byproduct electricity.
func HVACSubstitution(b types.HVACBuilding, currentCOP, price, gasPrice float64) HVACOutcome {
	if currentCOP <= 0 {
		currentCOP = types.DefaultHVACCurrentCOP
	}
	if gasPrice <= 0 {
		gasPrice = types.DefaultGasPrice
	}
	spec := HVACStrategies[b.Strategy]
	target := b.TargetCOP
	if target <= 0 {
		target = spec.COP
	}

	o := HVACOutcome{
		Name:      b.Name,
		TargetCOP: target,
		OldKW:     b.LoadKW / currentCOP,
	}
	o.BaselineKWh = o.OldKW * b.RunHours
	o.BaselineCost = o.BaselineKWh * price
	if target > 0 {
		o.NewKW = b.LoadKW / target
	}

	if b.Strategy == types.HVACCCHP {
		equivalentKWh := o.NewKW * b.RunHours
		o.GasM3 = equivalentKWh / gasHeatRate
		o.GasCost = o.GasM3 * gasPrice
		o.ByproductCredit = o.GasM3 * cchpByproductKWhPerM3 * price
		o.RetrofitCost = o.GasCost - o.ByproductCredit
	} else {
		o.RetrofitKWh = o.NewKW * b.RunHours
		o.RetrofitCost = o.RetrofitKWh * price
	}
	o.Saving = o.BaselineCost - o.RetrofitCost
	o.Investment = hvacInvestment(b, spec)
	return o
}

func hvacInvestment(b types.HVACBuilding, spec HVACStrategySpec) float64 {
	if b.CostMode == types.HVACCostPerM2 && b.UnitCost <= 0 {
		return b.AreaM2 * types.DefaultHVACUnitCostPerM2
	}
	if b.UnitCost <= 0 {
		return b.LoadKW * spec.UnitCostPerKW
	}
	switch b.CostMode {
	case types.HVACCostPerM2:
		return b.AreaM2 * b.UnitCost
	case types.HVACCostFixedWan:
		return b.UnitCost * types.MoneyUnit
	default:
		return b.LoadKW * b.UnitCost
	}
}

// HVACSchedule draws the building's plant load over its operating hours.
// CCHP buildings draw no grid electricity after the retrofit.
type HVACSchedule struct {
	Outcome HVACOutcome
	CCHP    bool
	Start   int
	End     int
}

// NewHVACSchedule builds the hourly view of an HVAC outcome.
func NewHVACSchedule(b types.HVACBuilding, o HVACOutcome) HVACSchedule {
	start, end := b.ScheduleStart, b.ScheduleEnd
	if end == 0 {
		start, end = types.DefaultHVACScheduleStart, types.DefaultHVACScheduleEnd
	}
	return HVACSchedule{Outcome: o, CCHP: b.Strategy == types.HVACCCHP, Start: start, End: end}
}

func (h HVACSchedule) Name() string { return "hvac-schedule" }

func (h HVACSchedule) Step(t Tick) types.HourlyState {
	if t.Hour < h.Start || t.Hour >= h.End {
		return types.HourlyState{FlowState: types.FlowIdle}
	}
	adjusted := h.Outcome.NewKW
	if h.CCHP {
		adjusted = 0
	}
	s := types.HourlyState{
		BaselineValue:   h.Outcome.OldKW,
		AdjustedValue:   adjusted,
		ActionMagnitude: adjusted - h.Outcome.OldKW,
		FlowState:       types.FlowIdle,
	}
	if adjusted < h.Outcome.OldKW {
		s.FlowState = types.FlowShed
	}
	return s
}

// Sum adds the outcomes of several buildings.
func Sum(outcomes []HVACOutcome) HVACOutcome {
	var total HVACOutcome
	for _, o := range outcomes {
		total.OldKW += o.OldKW
		total.NewKW += o.NewKW
		total.BaselineKWh += o.BaselineKWh
		total.RetrofitKWh += o.RetrofitKWh
		total.BaselineCost += o.BaselineCost
		total.RetrofitCost += o.RetrofitCost
		total.GasM3 += o.GasM3
		total.GasCost += o.GasCost
		total.ByproductCredit += o.ByproductCredit
		total.Saving += o.Saving
		total.Investment += o.Investment
	}
	return total
}
