package types

// AssetKind identifies which retrofit module a scenario evaluates.
type AssetKind string

const (
	AssetSolar     AssetKind = "solar"
	AssetStorage   AssetKind = "storage"
	AssetHVAC      AssetKind = "hvac"
	AssetMicrogrid AssetKind = "microgrid"
)

// StorageStrategy selects the storage dispatch policy.
type StorageStrategy string

const (
	// StorageTwoChargeTwoDischarge charges twice and discharges twice a day.
	StorageTwoChargeTwoDischarge StorageStrategy = "2c2d"
	// StorageOneChargeOneDischarge charges overnight and discharges in the day.
	StorageOneChargeOneDischarge StorageStrategy = "1c1d"
	// StorageValueStacking reacts to PV surplus, demand and price signals.
	StorageValueStacking StorageStrategy = "ai"
)

const (
	DefaultStorageRTEPct            = 88.0
	DefaultStorageDODPct            = 90.0
	DefaultDemandThresholdKW        = 180.0
	DefaultDemandChargePerKWMonth   = 40.0
	DefaultStorageOperatingDays     = 330
	DefaultSolarGenerationDays      = 330
	DefaultMicrogridOperatingDays   = 300
	DefaultHVACCurrentCOP           = 3.2
	DefaultGasPrice                 = 3.5
	DefaultHVACScheduleStart        = 8
	DefaultHVACScheduleEnd          = 18
	DefaultHVACUnitCostPerM2        = 200.0
	DefaultSelfConsumptionPct       = 85.0
	DefaultSolarSunHours            = 3.2
	DefaultStorageMinimumSiteLoadKW = 50.0
)

// StorageConfig describes a battery installation. Power is the only dispatch
// bound; state of charge is not tracked.
type StorageConfig struct {
	PowerKW     float64         `json:"powerKW" yaml:"powerKW"`
	CapacityKWh float64         `json:"capacityKWh" yaml:"capacityKWh"`
	UnitCost    float64         `json:"unitCost" yaml:"unitCost"` // yuan/kWh
	Strategy    StorageStrategy `json:"strategy" yaml:"strategy"`

	// AdvancedMode applies EfficiencyRTEPct to delivered discharge energy.
	AdvancedMode          bool    `json:"advancedMode,omitempty" yaml:"advancedMode,omitempty"`
	EfficiencyRTEPct      float64 `json:"efficiencyRTEPct,omitempty" yaml:"efficiencyRTEPct,omitempty"`
	DODPct                float64 `json:"dodPct,omitempty" yaml:"dodPct,omitempty"`
	DegradationPctPerYear float64 `json:"degradationPctPerYear,omitempty" yaml:"degradationPctPerYear,omitempty"`
	CycleLife             int     `json:"cycleLife,omitempty" yaml:"cycleLife,omitempty"`
	AuxPowerPct           float64 `json:"auxPowerPct,omitempty" yaml:"auxPowerPct,omitempty"`

	// Value stacking switches.
	PVCapacityKWp     float64 `json:"pvCapacityKWp,omitempty" yaml:"pvCapacityKWp,omitempty"`
	PVSelfConsumption bool    `json:"pvSelfConsumption,omitempty" yaml:"pvSelfConsumption,omitempty"`
	DemandManagement  bool    `json:"demandManagement,omitempty" yaml:"demandManagement,omitempty"`
	DynamicPricing    bool    `json:"dynamicPricing,omitempty" yaml:"dynamicPricing,omitempty"`

	DemandThresholdKW      float64 `json:"demandThresholdKW,omitempty" yaml:"demandThresholdKW,omitempty"`
	DemandChargePerKWMonth float64 `json:"demandChargePerKWMonth,omitempty" yaml:"demandChargePerKWMonth,omitempty"`
	OperatingDays          int     `json:"operatingDays,omitempty" yaml:"operatingDays,omitempty"`
}

// RTE returns the round trip efficiency as a fraction, 1 unless AdvancedMode.
func (c StorageConfig) RTE() float64 {
	if !c.AdvancedMode {
		return 1
	}
	if c.EfficiencyRTEPct > 0 {
		return c.EfficiencyRTEPct / 100
	}
	return DefaultStorageRTEPct / 100
}

// UsableCapacityKWh is the capacity available within the depth of discharge.
func (c StorageConfig) UsableCapacityKWh() float64 {
	dod := c.DODPct
	if dod <= 0 {
		dod = DefaultStorageDODPct
	}
	return c.CapacityKWh * dod / 100
}

// Validate rejects negative sizes and out-of-range percentages.
func (c StorageConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"storage.powerKW", c.PowerKW},
		{"storage.capacityKWh", c.CapacityKWh},
		{"storage.unitCost", c.UnitCost},
		{"storage.pvCapacityKWp", c.PVCapacityKWp},
		{"storage.demandThresholdKW", c.DemandThresholdKW},
		{"storage.demandChargePerKWMonth", c.DemandChargePerKWMonth},
	} {
		if err := checkNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"storage.efficiencyRTEPct", c.EfficiencyRTEPct},
		{"storage.dodPct", c.DODPct},
		{"storage.degradationPctPerYear", c.DegradationPctPerYear},
		{"storage.auxPowerPct", c.AuxPowerPct},
	} {
		if err := checkPercent(f.name, f.v); err != nil {
			return err
		}
	}
	if c.CycleLife < 0 || c.OperatingDays < 0 || c.OperatingDays > 366 {
		return NewConfigurationError("storage", "cycleLife and operatingDays must be non-negative and operatingDays at most 366")
	}
	switch c.Strategy {
	case StorageTwoChargeTwoDischarge, StorageOneChargeOneDischarge, StorageValueStacking:
	default:
		return NewConfigurationError("storage.strategy", "unknown strategy %q", c.Strategy)
	}
	return nil
}

// SelfConsumptionMode selects how the solar self-consumption rate is found.
type SelfConsumptionMode string

const (
	SelfConsumptionManual SelfConsumptionMode = "manual"
	SelfConsumptionBills  SelfConsumptionMode = "bills"
	SelfConsumptionCampus SelfConsumptionMode = "campus"
)

// SelfConsumption configures the share of solar output used on site.
type SelfConsumption struct {
	Mode      SelfConsumptionMode `json:"mode" yaml:"mode"`
	ManualPct float64             `json:"manualPct,omitempty" yaml:"manualPct,omitempty"`
}

// SolarConfig describes a rooftop PV installation.
type SolarConfig struct {
	CapacityKWp  float64 `json:"capacityKWp" yaml:"capacityKWp"`
	RoofAreaM2   float64 `json:"roofAreaM2,omitempty" yaml:"roofAreaM2,omitempty"`
	EPCPricePerW float64 `json:"epcPricePerW" yaml:"epcPricePerW"` // yuan/Wp

	PRValuePct    float64 `json:"prValuePct" yaml:"prValuePct"`
	AzimuthEffPct float64 `json:"azimuthEffPct" yaml:"azimuthEffPct"`
	// DailySunHours of zero means look up the site's region.
	DailySunHours  float64 `json:"dailySunHours,omitempty" yaml:"dailySunHours,omitempty"`
	GenerationDays int     `json:"generationDays,omitempty" yaml:"generationDays,omitempty"`

	DegradationFirstYearPct float64 `json:"degradationFirstYearPct" yaml:"degradationFirstYearPct"`
	DegradationLinearPct    float64 `json:"degradationLinearPct" yaml:"degradationLinearPct"`

	FeedInPrice float64 `json:"feedInPrice" yaml:"feedInPrice"` // yuan/kWh for exported energy
	// OMCostPerW is the annual O&M cost in yuan/W. Zero falls back to the
	// scenario's percent-of-investment O&M rate.
	OMCostPerW    float64 `json:"omCostPerW,omitempty" yaml:"omCostPerW,omitempty"`
	RoofRentPerM2 float64 `json:"roofRentPerM2,omitempty" yaml:"roofRentPerM2,omitempty"` // yuan/m2/year, EMC only

	SelfConsumption SelfConsumption `json:"selfConsumption" yaml:"selfConsumption"`
}

// Validate rejects negative sizes and out-of-range percentages.
func (c SolarConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"solar.capacityKWp", c.CapacityKWp},
		{"solar.roofAreaM2", c.RoofAreaM2},
		{"solar.epcPricePerW", c.EPCPricePerW},
		{"solar.dailySunHours", c.DailySunHours},
		{"solar.feedInPrice", c.FeedInPrice},
		{"solar.omCostPerW", c.OMCostPerW},
		{"solar.roofRentPerM2", c.RoofRentPerM2},
	} {
		if err := checkNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"solar.prValuePct", c.PRValuePct},
		{"solar.azimuthEffPct", c.AzimuthEffPct},
		{"solar.degradationFirstYearPct", c.DegradationFirstYearPct},
		{"solar.degradationLinearPct", c.DegradationLinearPct},
	} {
		if err := checkPercent(f.name, f.v); err != nil {
			return err
		}
	}
	if c.DailySunHours > 24 {
		return NewConfigurationError("solar.dailySunHours", "must be at most 24, got %v", c.DailySunHours)
	}
	if c.GenerationDays < 0 || c.GenerationDays > 366 {
		return NewConfigurationError("solar.generationDays", "must be between 0 and 366, got %d", c.GenerationDays)
	}
	switch c.SelfConsumption.Mode {
	case SelfConsumptionManual, "":
		return checkPercent("solar.selfConsumption.manualPct", c.SelfConsumption.ManualPct)
	case SelfConsumptionBills, SelfConsumptionCampus:
		return nil
	default:
		return NewConfigurationError("solar.selfConsumption.mode", "unknown mode %q", c.SelfConsumption.Mode)
	}
}

// HVACStrategy is the retrofit level for a building's HVAC plant.
type HVACStrategy string

const (
	HVACBasic        HVACStrategy = "basic"
	HVACIntermediate HVACStrategy = "intermediate"
	HVACAdvanced     HVACStrategy = "advanced"
	HVACCCHP         HVACStrategy = "cchp"
)

// HVACCostMode selects how UnitCost is applied.
type HVACCostMode string

const (
	HVACCostPerKW    HVACCostMode = "power" // yuan/kW
	HVACCostPerM2    HVACCostMode = "area"  // yuan/m2
	HVACCostFixedWan HVACCostMode = "fixed" // 万元 per building
)

// HVACBuilding is one building in an HVAC retrofit.
type HVACBuilding struct {
	Name     string       `json:"name,omitempty" yaml:"name,omitempty"`
	LoadKW   float64      `json:"loadKW" yaml:"loadKW"`
	AreaM2   float64      `json:"areaM2,omitempty" yaml:"areaM2,omitempty"`
	RunHours float64      `json:"runHours" yaml:"runHours"` // per year
	Strategy HVACStrategy `json:"strategy" yaml:"strategy"`
	// TargetCOP of zero uses the strategy's COP.
	TargetCOP float64 `json:"targetCOP,omitempty" yaml:"targetCOP,omitempty"`
	// UnitCost of zero uses DefaultHVACUnitCostPerM2 in area mode and the
	// strategy's yuan/kW cost otherwise.
	UnitCost float64      `json:"unitCost,omitempty" yaml:"unitCost,omitempty"`
	CostMode HVACCostMode `json:"costMode,omitempty" yaml:"costMode,omitempty"`
	// Inactive buildings are kept in the scenario but left out of results.
	Inactive bool `json:"inactive,omitempty" yaml:"inactive,omitempty"`

	ScheduleStart int `json:"scheduleStart,omitempty" yaml:"scheduleStart,omitempty"`
	ScheduleEnd   int `json:"scheduleEnd,omitempty" yaml:"scheduleEnd,omitempty"`
}

// HVACConfig groups the buildings in an HVAC retrofit.
type HVACConfig struct {
	Buildings []HVACBuilding `json:"buildings" yaml:"buildings"`
	// CurrentAvgCOP of the existing plant. Zero means DefaultHVACCurrentCOP.
	CurrentAvgCOP float64 `json:"currentAvgCOP,omitempty" yaml:"currentAvgCOP,omitempty"`
	// GasPrice in yuan/m3. Zero means DefaultGasPrice.
	GasPrice float64 `json:"gasPrice,omitempty" yaml:"gasPrice,omitempty"`
}

// Validate rejects negative loads and unknown strategies.
func (c HVACConfig) Validate() error {
	if err := checkNonNegative("hvac.currentAvgCOP", c.CurrentAvgCOP); err != nil {
		return err
	}
	if err := checkNonNegative("hvac.gasPrice", c.GasPrice); err != nil {
		return err
	}
	for i, b := range c.Buildings {
		for _, f := range []struct {
			name string
			v    float64
		}{
			{"hvac.buildings.loadKW", b.LoadKW},
			{"hvac.buildings.areaM2", b.AreaM2},
			{"hvac.buildings.runHours", b.RunHours},
			{"hvac.buildings.targetCOP", b.TargetCOP},
			{"hvac.buildings.unitCost", b.UnitCost},
		} {
			if err := checkNonNegative(f.name, f.v); err != nil {
				return err
			}
		}
		if b.RunHours > 8784 {
			return NewConfigurationError("hvac.buildings.runHours", "building %d runs more hours than a year has", i)
		}
		switch b.Strategy {
		case HVACBasic, HVACIntermediate, HVACAdvanced, HVACCCHP:
		default:
			return NewConfigurationError("hvac.buildings.strategy", "building %d has unknown strategy %q", i, b.Strategy)
		}
		switch b.CostMode {
		case "", HVACCostPerKW, HVACCostPerM2, HVACCostFixedWan:
		default:
			return NewConfigurationError("hvac.buildings.costMode", "building %d has unknown cost mode %q", i, b.CostMode)
		}
		if b.ScheduleStart < 0 || b.ScheduleEnd > 24 || (b.ScheduleEnd != 0 && b.ScheduleStart >= b.ScheduleEnd) {
			return NewConfigurationError("hvac.buildings.schedule", "building %d has invalid schedule [%d,%d)", i, b.ScheduleStart, b.ScheduleEnd)
		}
	}
	return nil
}

// MicrogridConfig drives the price-responsive load model.
type MicrogridConfig struct {
	// Aggressiveness from 0 to 100 scales how strongly load follows price.
	Aggressiveness float64 `json:"aggressiveness" yaml:"aggressiveness"`
	// DynamicPricing replaces a non-imported tariff with the volatile generator.
	DynamicPricing bool    `json:"dynamicPricing,omitempty" yaml:"dynamicPricing,omitempty"`
	InvestmentWan  float64 `json:"investmentWan" yaml:"investmentWan"`
	AnnualOpexWan  float64 `json:"annualOpexWan,omitempty" yaml:"annualOpexWan,omitempty"`
	OperatingDays  int     `json:"operatingDays,omitempty" yaml:"operatingDays,omitempty"`
}

// Validate rejects out-of-range dials and negative money.
func (c MicrogridConfig) Validate() error {
	if err := checkPercent("microgrid.aggressiveness", c.Aggressiveness); err != nil {
		return err
	}
	if err := checkNonNegative("microgrid.investmentWan", c.InvestmentWan); err != nil {
		return err
	}
	if err := checkNonNegative("microgrid.annualOpexWan", c.AnnualOpexWan); err != nil {
		return err
	}
	if c.OperatingDays < 0 || c.OperatingDays > 366 {
		return NewConfigurationError("microgrid.operatingDays", "must be between 0 and 366, got %d", c.OperatingDays)
	}
	return nil
}
