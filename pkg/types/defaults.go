package types

// DefaultSolarConfig returns a typical 400 kWp commercial rooftop system.
func DefaultSolarConfig() SolarConfig {
	return SolarConfig{
		CapacityKWp:             400,
		RoofAreaM2:              5000,
		EPCPricePerW:            3.5,
		PRValuePct:              82,
		AzimuthEffPct:           98,
		DailySunHours:           3.8,
		GenerationDays:          DefaultSolarGenerationDays,
		DegradationFirstYearPct: 2.0,
		DegradationLinearPct:    0.55,
		FeedInPrice:             0.35,
		OMCostPerW:              0.05,
		RoofRentPerM2:           5,
		SelfConsumption: SelfConsumption{
			Mode:      SelfConsumptionManual,
			ManualPct: DefaultSelfConsumptionPct,
		},
	}
}

// DefaultStorageConfig returns a 100 kW / 215 kWh cabinet on a 2c2d schedule.
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		PowerKW:                100,
		CapacityKWh:            215,
		UnitCost:               1200,
		Strategy:               StorageTwoChargeTwoDischarge,
		EfficiencyRTEPct:       DefaultStorageRTEPct,
		DODPct:                 DefaultStorageDODPct,
		DegradationPctPerYear:  1.5,
		CycleLife:              6000,
		AuxPowerPct:            1.5,
		DemandThresholdKW:      DefaultDemandThresholdKW,
		DemandChargePerKWMonth: DefaultDemandChargePerKWMonth,
		OperatingDays:          DefaultStorageOperatingDays,
	}
}

// DefaultHVACConfig returns a single office building on the intermediate
// strategy.
func DefaultHVACConfig() HVACConfig {
	return HVACConfig{
		Buildings: []HVACBuilding{{
			Name:     "Main building",
			LoadKW:   500,
			AreaM2:   10000,
			RunHours: 2000,
			Strategy: HVACIntermediate,
			CostMode: HVACCostPerKW,
		}},
		CurrentAvgCOP: DefaultHVACCurrentCOP,
		GasPrice:      DefaultGasPrice,
	}
}

// DefaultMicrogridConfig returns a moderately aggressive load-shifting setup.
func DefaultMicrogridConfig() MicrogridConfig {
	return MicrogridConfig{
		Aggressiveness: 50,
		InvestmentWan:  80,
		AnnualOpexWan:  2,
		OperatingDays:  DefaultMicrogridOperatingDays,
	}
}

// DefaultTOUSegments is a typical commercial peak/flat/valley tariff.
func DefaultTOUSegments() []TOUSegment {
	return []TOUSegment{
		{Start: 0, End: 8, Price: 0.35, Label: "valley"},
		{Start: 8, End: 11, Price: 1.1, Label: "peak"},
		{Start: 11, End: 13, Price: 0.7, Label: "flat"},
		{Start: 13, End: 15, Price: 1.1, Label: "peak"},
		{Start: 15, End: 17, Price: 0.7, Label: "flat"},
		{Start: 17, End: 22, Price: 1.1, Label: "peak"},
		{Start: 22, End: 24, Price: 0.7, Label: "flat"},
	}
}

// DefaultScenario returns a complete, valid scenario for kind. It returns
// false for an unknown kind.
func DefaultScenario(kind AssetKind) (Scenario, bool) {
	s := Scenario{
		Asset:     kind,
		Name:      "Example " + string(kind),
		Price:     PriceConfig{Mode: PriceModeTOU, Segments: DefaultTOUSegments()},
		Ownership: OwnershipConfig{Mode: OwnershipSelf},
	}
	switch kind {
	case AssetSolar:
		c := DefaultSolarConfig()
		s.Solar = &c
		s.Finance = FinanceParams{OMRatePct: 1, InsuranceRatePct: 0.25}
	case AssetStorage:
		c := DefaultStorageConfig()
		s.Storage = &c
		s.Finance = FinanceParams{OMRatePct: 1.5}
	case AssetHVAC:
		c := DefaultHVACConfig()
		s.HVAC = &c
		s.Ownership = OwnershipConfig{Mode: OwnershipEMCSharing, OwnerSharePct: 20}
		s.Finance = FinanceParams{OMRatePct: 1, OMEscalationPct: 2, DiscountRatePct: 5}
	case AssetMicrogrid:
		c := DefaultMicrogridConfig()
		c.DynamicPricing = true
		s.Microgrid = &c
		s.Price.Seed = 1
	default:
		return Scenario{}, false
	}
	return s, true
}

// AssetKinds lists every supported asset.
func AssetKinds() []AssetKind {
	return []AssetKind{AssetSolar, AssetStorage, AssetHVAC, AssetMicrogrid}
}
