package types

// FlowState labels what an asset did in an hour.
type FlowState string

const (
	FlowIdle      FlowState = "idle"
	FlowCharge    FlowState = "charge"
	FlowDischarge FlowState = "discharge"
	FlowShed      FlowState = "shed"
	FlowAbsorb    FlowState = "absorb"
)

// HourlyState is one tick of a representative-day simulation. Values are kW
// (equivalently kWh over the hour) and Price is yuan/kWh.
type HourlyState struct {
	Hour            int       `json:"hour"`
	Price           float64   `json:"price"`
	BaselineValue   float64   `json:"baselineValue"`
	AdjustedValue   float64   `json:"adjustedValue"`
	ActionMagnitude float64   `json:"actionMagnitude"`
	FlowState       FlowState `json:"flowState"`
}

// AnnualTotals is the single-year aggregate of a simulated day.
type AnnualTotals struct {
	DailyCostBase        float64 `json:"dailyCostBase"`     // yuan
	DailyCostAdjusted    float64 `json:"dailyCostAdjusted"` // yuan
	AnnualEnergyBase     float64 `json:"annualEnergyBase"`  // kWh
	AnnualEnergyAdjusted float64 `json:"annualEnergyAdjusted"`
	AnnualCostBase       float64 `json:"annualCostBase"` // monetary unit
	AnnualCostAdjusted   float64 `json:"annualCostAdjusted"`
	AnnualSaving         float64 `json:"annualSaving"`
	AnnualOpex           float64 `json:"annualOpex"`
	NetBenefit           float64 `json:"netBenefit"`
}

// YearFinancials is one row of the multi-year projection. Year 0 carries the
// investment outlay.
type YearFinancials struct {
	Year               int     `json:"year"`
	GenerationOrLoad   float64 `json:"generationOrLoad"`
	Revenue            float64 `json:"revenue"`
	OwnerBenefit       float64 `json:"ownerBenefit"`
	Opex               float64 `json:"opex"`
	Tax                float64 `json:"tax"`
	NetCashFlow        float64 `json:"netCashFlow"`
	CumulativeCashFlow float64 `json:"cumulativeCashFlow"`
}

// Metric is a ratio that may be undefined, for example ROI on a zero
// investment.
type Metric struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Payback is the static payback period. When Recovered is false Years holds
// the horizon length and is not a real payback. Defined is false when there
// was no outlay to recover.
type Payback struct {
	Years     float64 `json:"years"`
	Recovered bool    `json:"recovered"`
	Defined   bool    `json:"defined"`
}

// IRR is the result of the coarse step search. Converged is false when the
// iteration budget ran out and Pct is the last guess.
type IRR struct {
	Pct       float64 `json:"pct"`
	Converged bool    `json:"converged"`
	Defined   bool    `json:"defined"`
}

// FinancialSummary is the headline view of a projection.
type FinancialSummary struct {
	Investment   float64   `json:"investment"`
	AnnualSaving float64   `json:"annualSaving"`
	NetBenefit   float64   `json:"netBenefit"`
	ROI          Metric    `json:"roi"`
	Payback      Payback   `json:"payback"`
	IRR          IRR       `json:"irr"`
	CashFlows    []float64 `json:"cashFlows"`
	NPV          *float64  `json:"npv,omitempty"`
}

// Environmental reports the first-year emission reductions of generation.
type Environmental struct {
	CarbonReductionTons float64 `json:"carbonReductionTons"`
	CoalSavedTons       float64 `json:"coalSavedTons"`
}
