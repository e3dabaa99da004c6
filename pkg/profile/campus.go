package profile

import (
	"fmt"
	"math"

	"github.com/raterudder/retrofit/pkg/types"
)

type schoolTraits struct {
	baseRate    float64
	weekendLoad float64
	description string
	// vacation days by region
	vacation map[types.Region]int
	// hourly load relative to the daily mean
	hourly [24]float64
}

var schoolData = map[types.SchoolType]schoolTraits{
	types.SchoolPrimaryMiddle: {
		baseRate:    0.68,
		weekendLoad: 0.25,
		description: "primary/middle school: daytime teaching lines up with PV output",
		vacation:    map[types.Region]int{types.RegionNorth: 70, types.RegionSouth: 60, types.RegionCentral: 65},
		hourly: [24]float64{
			0.3, 0.2, 0.2, 0.2, 0.2, 0.3, 0.5, 0.7,
			0.9, 1.0, 1.0, 0.9, 0.7, 0.6, 0.6, 0.9,
			0.9, 0.9, 0.8, 0.6, 0.4, 0.3, 0.3, 0.2,
		},
	},
	types.SchoolHigh: {
		baseRate:    0.64,
		weekendLoad: 0.30,
		description: "high school: daytime teaching with busy afternoons",
		vacation:    map[types.Region]int{types.RegionNorth: 70, types.RegionSouth: 60, types.RegionCentral: 65},
		hourly: [24]float64{
			0.3, 0.2, 0.2, 0.2, 0.2, 0.3, 0.6, 0.8,
			1.0, 1.0, 1.0, 0.9, 0.7, 0.6, 0.5, 0.9,
			0.9, 0.9, 0.8, 0.7, 0.5, 0.4, 0.3, 0.2,
		},
	},
	types.SchoolUniversity: {
		baseRate:    0.55,
		weekendLoad: 0.50,
		description: "university: dormitories carry night load, moderate self-consumption",
		vacation:    map[types.Region]int{types.RegionNorth: 90, types.RegionSouth: 80, types.RegionCentral: 85},
		hourly: [24]float64{
			0.5, 0.4, 0.3, 0.3, 0.3, 0.5, 0.7, 0.9,
			0.9, 0.9, 0.8, 0.8, 0.7, 0.6, 0.6, 0.8,
			0.8, 0.8, 0.7, 0.7, 0.6, 0.5, 0.5, 0.4,
		},
	},
	types.SchoolVocational: {
		baseRate:    0.60,
		weekendLoad: 0.35,
		description: "vocational school: workshop equipment runs in daylight",
		vacation:    map[types.Region]int{types.RegionNorth: 75, types.RegionSouth: 65, types.RegionCentral: 70},
		hourly: [24]float64{
			0.3, 0.2, 0.2, 0.2, 0.2, 0.4, 0.7, 0.9,
			1.0, 1.0, 0.9, 0.9, 0.7, 0.6, 0.6, 0.9,
			0.9, 0.9, 0.8, 0.6, 0.4, 0.3, 0.3, 0.2,
		},
	},
	types.SchoolTraining: {
		baseRate:    0.72,
		weekendLoad: 0.60,
		description: "training centre: concentrated daytime classes, best load match",
		vacation:    map[types.Region]int{types.RegionNorth: 40, types.RegionSouth: 35, types.RegionCentral: 38},
		hourly: [24]float64{
			0.2, 0.2, 0.2, 0.2, 0.2, 0.3, 0.8, 1.0,
			1.0, 1.0, 1.0, 0.8, 0.6, 0.6, 0.6, 1.0,
			1.0, 1.0, 1.0, 0.8, 0.6, 0.4, 0.2, 0.2,
		},
	},
}

// typicalPV is normalised clear-sky PV output by hour.
var typicalPV = [24]float64{
	0, 0, 0, 0, 0, 0, 0.05, 0.15,
	0.30, 0.45, 0.65, 0.80, 0.95, 0.90, 0.80, 0.65,
	0.45, 0.25, 0.10, 0.02, 0, 0, 0, 0,
}

const (
	statutoryHolidayDays = 11
	weekendDays          = 104
	vacationRate         = 0.25
	weekendPVFactor      = 0.7
	maxCampusRate        = 0.95
)

// CampusHeuristic estimates self-consumption for school campuses from the
// school type, storage ratio, air conditioning, seasons, weekends and
// vacations. The zero value uses the default season weights.
type CampusHeuristic struct {
	// SeasonWeights in spring, summer, autumn, winter order. Zero uses
	// 0.25, 0.35, 0.25, 0.15.
	SeasonWeights [4]float64
	// SkipWeekends and SkipVacations disable the respective dilution.
	SkipWeekends  bool
	SkipVacations bool
}

// Estimate implements SelfConsumptionEstimator.
func (c CampusHeuristic) Estimate(site types.SiteProfile, pvKWp, storageKWh float64) (CampusEstimate, error) {
	school, ok := schoolData[site.SchoolType]
	if !ok {
		return CampusEstimate{}, types.NewConfigurationError("site.schoolType", "unknown school type %q", site.SchoolType)
	}
	region := site.Region
	if _, ok := school.vacation[region]; !ok {
		region = types.RegionCentral
	}
	if pvKWp <= 0 {
		return CampusEstimate{Explanation: []string{"no PV capacity"}}, nil
	}
	ratio := storageKWh / pvKWp
	explanation := []string{school.description}

	base := school.baseRate + math.Min(0.25, ratio*0.12)
	if site.HasAirConditioning {
		base += 0.10
	}
	base = math.Min(maxCampusRate, base)
	explanation = append(explanation, fmt.Sprintf("base rate %.1f%% from school type and storage", base*100))

	seasonal := campusSeasonalRates(site, base, ratio)
	explanation = append(explanation, fmt.Sprintf(
		"seasonal rates: spring %.1f%%, summer %.1f%%, autumn %.1f%%, winter %.1f%%",
		seasonal[0]*100, seasonal[1]*100, seasonal[2]*100, seasonal[3]*100,
	))

	weights := c.SeasonWeights
	if weights == [4]float64{} {
		weights = [4]float64{0.25, 0.35, 0.25, 0.15}
	}
	var rate float64
	for i := range seasonal {
		rate += seasonal[i] * weights[i]
	}
	explanation = append(explanation, fmt.Sprintf("season weighted %.1f%%", rate*100))

	if !c.SkipWeekends {
		workingDays := float64(365 - weekendDays - statutoryHolidayDays)
		weekendRate := school.weekendLoad * (0.3 + ratio*0.4) * weekendPVFactor
		adjusted := math.Min(maxCampusRate, (rate*workingDays+weekendRate*weekendDays)/365)
		explanation = append(explanation, fmt.Sprintf("weekends: -%.1f%% over %d days", (rate-adjusted)*100, weekendDays))
		rate = adjusted
	}
	if !c.SkipVacations {
		vacationDays := school.vacation[region]
		workingDays := float64(365 - vacationDays - statutoryHolidayDays)
		adjusted := math.Min(maxCampusRate, (rate*workingDays+vacationRate*float64(vacationDays))/365)
		explanation = append(explanation, fmt.Sprintf("vacations: -%.1f%% over %d days", (rate-adjusted)*100, vacationDays))
		rate = adjusted
	}
	if site.HasAirConditioning {
		explanation = append(explanation, "air conditioning lifts summer self-consumption")
	}

	curve := campusCurveRate(school, pvKWp, storageKWh)
	explanation = append(explanation, fmt.Sprintf("typical day check %.1f%%", curve*100))

	return CampusEstimate{
		RecommendedRate: roundPct(math.Min(rate, curve)),
		SeasonalRates: SeasonalRates{
			Spring: roundPct(seasonal[0]),
			Summer: roundPct(seasonal[1]),
			Autumn: roundPct(seasonal[2]),
			Winter: roundPct(seasonal[3]),
		},
		Explanation: explanation,
	}, nil
}

func campusSeasonalRates(site types.SiteProfile, base, ratio float64) [4]float64 {
	factors := [4]float64{1.0, 1.15, 1.08, 0.85}
	storage := [4]float64{ratio * 0.03, ratio * 0.06, ratio * 0.05, ratio * 0.02}
	var ac, school [4]float64
	if site.HasAirConditioning {
		ac = [4]float64{0.02, 0.08, 0.04, 0}
	}
	switch site.SchoolType {
	case types.SchoolPrimaryMiddle, types.SchoolHigh:
		school[1] = 0.05
	}
	if site.SchoolType == types.SchoolUniversity {
		school[3] = -0.05
	} else {
		school[3] = -0.02
	}
	var out [4]float64
	for i := range out {
		out[i] = math.Min(maxCampusRate, math.Max(0.3, base*factors[i]+ac[i]+storage[i]+school[i]))
	}
	return out
}

// campusCurveRate walks a typical day with a simple storage buffer sized at
// one twenty-fourth of the storage capacity per hour.
func campusCurveRate(school schoolTraits, pvKWp, storageKWh float64) float64 {
	var generated, consumed, stored float64
	maxStored := storageKWh / 24
	for h := 0; h < 24; h++ {
		pv := typicalPV[h] * pvKWp
		load := school.hourly[h] * 0.5 * pvKWp
		generated += pv
		if pv >= load {
			stored += math.Min(pv-load, maxStored-stored)
			consumed += load
		} else {
			discharge := math.Min(load-pv, stored)
			stored -= discharge
			consumed += pv + discharge
		}
	}
	if generated <= 0 {
		return 0
	}
	return consumed / generated
}

func roundPct(fraction float64) float64 {
	return math.Round(fraction*10000) / 100
}
