// Package finance turns simulated days into annual totals and multi-year
// cash flows.
package finance

import (
	"github.com/raterudder/retrofit/pkg/types"
)

// Aggregate scales one simulated day to a year. days is the number of
// operating days and annualOpex is in the monetary unit.
func Aggregate(states []types.HourlyState, days int, annualOpex float64) types.AnnualTotals {
	var t types.AnnualTotals
	var energyBase, energyAdjusted float64
	for _, s := range states {
		t.DailyCostBase += s.BaselineValue * s.Price
		t.DailyCostAdjusted += s.AdjustedValue * s.Price
		energyBase += s.BaselineValue
		energyAdjusted += s.AdjustedValue
	}
	if days < 0 {
		days = 0
	}
	d := float64(days)
	t.AnnualEnergyBase = energyBase * d
	t.AnnualEnergyAdjusted = energyAdjusted * d
	t.AnnualCostBase = t.DailyCostBase * d / types.MoneyUnit
	t.AnnualCostAdjusted = t.DailyCostAdjusted * d / types.MoneyUnit
	t.AnnualSaving = t.AnnualCostBase - t.AnnualCostAdjusted
	t.AnnualOpex = annualOpex
	t.NetBenefit = t.AnnualSaving - annualOpex
	return t
}

// DailySaving is the cost difference of one simulated day in yuan.
func DailySaving(states []types.HourlyState) float64 {
	var saving float64
	for _, s := range states {
		saving += (s.BaselineValue - s.AdjustedValue) * s.Price
	}
	return saving
}

// PeakReduction is how far the day's maximum draw dropped, never negative.
func PeakReduction(states []types.HourlyState) float64 {
	var maxBase, maxAdjusted float64
	for _, s := range states {
		maxBase = max(maxBase, s.BaselineValue)
		maxAdjusted = max(maxAdjusted, s.AdjustedValue)
	}
	return max(0, maxBase-maxAdjusted)
}
