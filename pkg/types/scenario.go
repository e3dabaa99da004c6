package types

import (
	"fmt"
	"slices"
	"time"
)

// CurrentScenarioVersion is the current version of the stored scenario
// format. Increment this value when adding fields that need a default.
const CurrentScenarioVersion = 2

// MoneyUnit is the divisor from yuan to the reporting unit (万元).
const MoneyUnit = 10000.0

// SchoolType classifies campus sites for the self-consumption heuristic.
type SchoolType string

const (
	SchoolPrimaryMiddle SchoolType = "primary_middle"
	SchoolHigh          SchoolType = "high_school"
	SchoolUniversity    SchoolType = "university"
	SchoolVocational    SchoolType = "vocational"
	SchoolTraining      SchoolType = "training"
)

// Region is the climate band used for school vacation lengths.
type Region string

const (
	RegionNorth   Region = "north"
	RegionSouth   Region = "south"
	RegionCentral Region = "central"
)

// BuildingTypeSchool enables the campus self-consumption heuristic.
const BuildingTypeSchool = "school"

// SiteProfile describes the site a retrofit is evaluated for.
type SiteProfile struct {
	Province           string     `json:"province,omitempty" yaml:"province,omitempty"`
	City               string     `json:"city,omitempty" yaml:"city,omitempty"`
	Region             Region     `json:"region,omitempty" yaml:"region,omitempty"`
	BuildingType       string     `json:"buildingType,omitempty" yaml:"buildingType,omitempty"`
	SchoolType         SchoolType `json:"schoolType,omitempty" yaml:"schoolType,omitempty"`
	HasAirConditioning bool       `json:"hasAirConditioning,omitempty" yaml:"hasAirConditioning,omitempty"`
	StorageCapacityKWh float64    `json:"storageCapacityKWh,omitempty" yaml:"storageCapacityKWh,omitempty"`
	// MonthlyBilledKWh holds historical bills used to estimate self-consumption.
	MonthlyBilledKWh []float64 `json:"monthlyBilledKWh,omitempty" yaml:"monthlyBilledKWh,omitempty"`
}

// FinanceParams are the projection parameters shared by every asset.
type FinanceParams struct {
	// HorizonYears of zero uses the asset's default horizon.
	HorizonYears       int     `json:"horizonYears,omitempty" yaml:"horizonYears,omitempty"`
	OMRatePct          float64 `json:"omRatePct,omitempty" yaml:"omRatePct,omitempty"`
	InsuranceRatePct   float64 `json:"insuranceRatePct,omitempty" yaml:"insuranceRatePct,omitempty"`
	OMEscalationPct    float64 `json:"omEscalationPct,omitempty" yaml:"omEscalationPct,omitempty"`
	TaxRatePct         float64 `json:"taxRatePct,omitempty" yaml:"taxRatePct,omitempty"`
	PriceEscalationPct float64 `json:"priceEscalationPct,omitempty" yaml:"priceEscalationPct,omitempty"`
	// DiscountRatePct enables NPV when positive.
	DiscountRatePct float64 `json:"discountRatePct,omitempty" yaml:"discountRatePct,omitempty"`
}

// Validate checks every rate is a sane percentage.
func (f FinanceParams) Validate() error {
	if f.HorizonYears < 0 || f.HorizonYears > 50 {
		return NewConfigurationError("finance.horizonYears", "must be between 0 and 50, got %d", f.HorizonYears)
	}
	for _, r := range []struct {
		name string
		v    float64
	}{
		{"finance.omRatePct", f.OMRatePct},
		{"finance.insuranceRatePct", f.InsuranceRatePct},
		{"finance.omEscalationPct", f.OMEscalationPct},
		{"finance.taxRatePct", f.TaxRatePct},
		{"finance.priceEscalationPct", f.PriceEscalationPct},
		{"finance.discountRatePct", f.DiscountRatePct},
	} {
		if err := checkPercent(r.name, r.v); err != nil {
			return err
		}
	}
	return nil
}

// Scenario is the full input of one evaluation. Exactly the asset block
// matching Asset is consulted.
type Scenario struct {
	ID        string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string          `json:"name,omitempty" yaml:"name,omitempty"`
	Asset     AssetKind       `json:"asset" yaml:"asset"`
	Price     PriceConfig     `json:"price" yaml:"price"`
	Ownership OwnershipConfig `json:"ownership" yaml:"ownership"`
	Finance   FinanceParams   `json:"finance" yaml:"finance"`
	Site      SiteProfile     `json:"site" yaml:"site"`

	Solar     *SolarConfig     `json:"solar,omitempty" yaml:"solar,omitempty"`
	Storage   *StorageConfig   `json:"storage,omitempty" yaml:"storage,omitempty"`
	HVAC      *HVACConfig      `json:"hvac,omitempty" yaml:"hvac,omitempty"`
	Microgrid *MicrogridConfig `json:"microgrid,omitempty" yaml:"microgrid,omitempty"`
}

// Horizon returns the analysis horizon in years.
func (s Scenario) Horizon() int {
	if s.Finance.HorizonYears > 0 {
		return s.Finance.HorizonYears
	}
	switch s.Asset {
	case AssetSolar:
		return 25
	case AssetMicrogrid:
		return 10
	default:
		return 15
	}
}

// Validate checks the scenario is internally consistent.
func (s Scenario) Validate() error {
	if err := s.Price.Validate(); err != nil {
		return err
	}
	if err := s.Ownership.Validate(); err != nil {
		return err
	}
	if err := s.Finance.Validate(); err != nil {
		return err
	}
	for _, kwh := range s.Site.MonthlyBilledKWh {
		if err := checkNonNegative("site.monthlyBilledKWh", kwh); err != nil {
			return err
		}
	}
	switch s.Asset {
	case AssetSolar:
		if s.Solar == nil {
			return NewConfigurationError("solar", "missing for asset %q", s.Asset)
		}
		return s.Solar.Validate()
	case AssetStorage:
		if s.Storage == nil {
			return NewConfigurationError("storage", "missing for asset %q", s.Asset)
		}
		return s.Storage.Validate()
	case AssetHVAC:
		if s.HVAC == nil {
			return NewConfigurationError("hvac", "missing for asset %q", s.Asset)
		}
		return s.HVAC.Validate()
	case AssetMicrogrid:
		if s.Microgrid == nil {
			return NewConfigurationError("microgrid", "missing for asset %q", s.Asset)
		}
		return s.Microgrid.Validate()
	default:
		return NewConfigurationError("asset", "unknown asset %q", s.Asset)
	}
}

// Clone returns a deep copy so callers can modify asset blocks freely.
func (s Scenario) Clone() Scenario {
	c := s
	c.Price.Segments = append([]TOUSegment(nil), s.Price.Segments...)
	c.Price.SpotPrices = append([]float64(nil), s.Price.SpotPrices...)
	c.Price.Imported = append([]HourlyPricePoint(nil), s.Price.Imported...)
	c.Site.MonthlyBilledKWh = append([]float64(nil), s.Site.MonthlyBilledKWh...)
	if s.Solar != nil {
		v := *s.Solar
		c.Solar = &v
	}
	if s.Storage != nil {
		v := *s.Storage
		c.Storage = &v
	}
	if s.HVAC != nil {
		v := *s.HVAC
		v.Buildings = append([]HVACBuilding(nil), s.HVAC.Buildings...)
		c.HVAC = &v
	}
	if s.Microgrid != nil {
		v := *s.Microgrid
		c.Microgrid = &v
	}
	return c
}

// Result is the full output of one evaluation.
type Result struct {
	RunID      string    `json:"runID,omitempty"`
	ScenarioID string    `json:"scenarioID,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`

	Asset   AssetKind          `json:"asset"`
	Prices  []HourlyPricePoint `json:"prices"`
	Hourly  []HourlyState      `json:"hourly"`
	Annual  AnnualTotals       `json:"annual"`
	Years   []YearFinancials   `json:"years"`
	Summary FinancialSummary   `json:"summary"`

	SelfConsumptionPct float64        `json:"selfConsumptionPct,omitempty"`
	Environmental      *Environmental `json:"environmental,omitempty"`
	Notes              []string       `json:"notes,omitempty"`
}

// Clone returns a deep copy that shares no slices or pointers with r.
func (r Result) Clone() Result {
	c := r
	c.Prices = slices.Clone(r.Prices)
	c.Hourly = slices.Clone(r.Hourly)
	c.Years = slices.Clone(r.Years)
	c.Notes = slices.Clone(r.Notes)
	c.Summary.CashFlows = slices.Clone(r.Summary.CashFlows)
	if r.Summary.NPV != nil {
		v := *r.Summary.NPV
		c.Summary.NPV = &v
	}
	if r.Environmental != nil {
		v := *r.Environmental
		c.Environmental = &v
	}
	return c
}

// MigrateScenario upgrades a stored scenario to the current version.
// It returns the migrated scenario, a boolean indicating if changes were
// made, and an error if migration failed.
func MigrateScenario(s Scenario, currentVersion int) (Scenario, bool, error) {
	if currentVersion >= CurrentScenarioVersion {
		return s, false, nil
	}

	s = s.Clone()
	migrated := false
	for version := currentVersion + 1; version <= CurrentScenarioVersion; version++ {
		switch version {
		case 1:
			// version 1: explicit ownership, strategy and self-consumption modes
			if s.Ownership.Mode == "" {
				s.Ownership.Mode = OwnershipSelf
				migrated = true
			}
			if s.Storage != nil && s.Storage.Strategy == "" {
				s.Storage.Strategy = StorageTwoChargeTwoDischarge
				migrated = true
			}
			if s.Solar != nil && s.Solar.SelfConsumption.Mode == "" {
				s.Solar.SelfConsumption.Mode = SelfConsumptionManual
				migrated = true
			}
		case 2:
			// version 2: HVAC buildings carry a cost mode
			if s.HVAC != nil {
				for i := range s.HVAC.Buildings {
					if s.HVAC.Buildings[i].CostMode == "" {
						s.HVAC.Buildings[i].CostMode = HVACCostPerKW
						migrated = true
					}
				}
			}
		default:
			return s, false, fmt.Errorf("unknown scenario version: %d", version)
		}
	}

	return s, migrated, nil
}
