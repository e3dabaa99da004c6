package profile

import (
	"fmt"
	"math"

	"github.com/raterudder/retrofit/pkg/types"
)

// SeasonalRates are self-consumption percentages per season.
type SeasonalRates struct {
	Spring float64 `json:"spring"`
	Summer float64 `json:"summer"`
	Autumn float64 `json:"autumn"`
	Winter float64 `json:"winter"`
}

// CampusEstimate is the output of a site-specific self-consumption estimator.
type CampusEstimate struct {
	RecommendedRate float64       `json:"recommendedRate"` // percent
	SeasonalRates   SeasonalRates `json:"seasonalRates"`
	Explanation     []string      `json:"explanation"`
}

// SelfConsumptionEstimator estimates the self-consumption rate of a PV
// system from the site's characteristics.
type SelfConsumptionEstimator interface {
	Estimate(site types.SiteProfile, pvKWp, storageKWh float64) (CampusEstimate, error)
}

// SelfConsumptionResult is the resolved self-consumption rate.
type SelfConsumptionResult struct {
	Pct   float64
	Mode  types.SelfConsumptionMode
	Notes []string
}

// ResolveSelfConsumption determines the share of PV output used on site.
// annualGenKWh is the simulated first-year generation used to compare
// against historical bills. A nil estimator uses CampusHeuristic.
func ResolveSelfConsumption(
	cfg types.SelfConsumption,
	site types.SiteProfile,
	pvKWp float64,
	annualGenKWh float64,
	est SelfConsumptionEstimator,
) (SelfConsumptionResult, error) {
	switch cfg.Mode {
	case types.SelfConsumptionManual, "":
		return SelfConsumptionResult{Pct: cfg.ManualPct, Mode: types.SelfConsumptionManual}, nil

	case types.SelfConsumptionBills:
		var billed float64
		for _, kwh := range site.MonthlyBilledKWh {
			billed += kwh
		}
		if billed <= 0 || annualGenKWh <= 0 {
			return SelfConsumptionResult{
				Pct:   types.DefaultSelfConsumptionPct,
				Mode:  types.SelfConsumptionBills,
				Notes: []string{"no billing history or generation, using default self-consumption"},
			}, nil
		}
		pct := math.Round(math.Min(100, billed/annualGenKWh*100))
		return SelfConsumptionResult{
			Pct:   pct,
			Mode:  types.SelfConsumptionBills,
			Notes: []string{fmt.Sprintf("billed %.0f kWh against %.0f kWh generated", billed, annualGenKWh)},
		}, nil

	case types.SelfConsumptionCampus:
		if site.BuildingType != types.BuildingTypeSchool {
			return SelfConsumptionResult{}, types.NewConfigurationError("site.buildingType", "campus self-consumption requires a %q site, got %q", types.BuildingTypeSchool, site.BuildingType)
		}
		if est == nil {
			est = CampusHeuristic{}
		}
		e, err := est.Estimate(site, pvKWp, site.StorageCapacityKWh)
		if err != nil {
			return SelfConsumptionResult{}, fmt.Errorf("failed to estimate campus self-consumption: %w", err)
		}
		return SelfConsumptionResult{
			Pct:   e.RecommendedRate,
			Mode:  types.SelfConsumptionCampus,
			Notes: e.Explanation,
		}, nil

	default:
		return SelfConsumptionResult{}, types.NewConfigurationError("solar.selfConsumption.mode", "unknown mode %q", cfg.Mode)
	}
}
