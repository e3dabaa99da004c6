package dispatch

import (
	"math"

	"github.com/raterudder/retrofit/pkg/types"
)

type hourWindow struct{ start, end int }

func (w hourWindow) contains(h int) bool { return h >= w.start && h < w.end }

var storageWindows = map[types.StorageStrategy]struct {
	charge    []hourWindow
	discharge []hourWindow
}{
	types.StorageTwoChargeTwoDischarge: {
		charge:    []hourWindow{{0, 7}, {12, 14}},
		discharge: []hourWindow{{9, 11}, {15, 21}},
	},
	types.StorageOneChargeOneDischarge: {
		charge:    []hourWindow{{0, 8}},
		discharge: []hourWindow{{9, 12}, {15, 20}},
	},
}

// StorageSchedule charges and discharges at rated power in fixed windows.
type StorageSchedule struct {
	Strategy types.StorageStrategy
	PowerKW  float64
	// RTE scales delivered discharge energy. Zero means lossless.
	RTE float64
}

func (s StorageSchedule) Name() string { return "storage-" + string(s.Strategy) }

func (s StorageSchedule) Step(t Tick) types.HourlyState {
	windows, ok := storageWindows[s.Strategy]
	if !ok {
		windows = storageWindows[types.StorageTwoChargeTwoDischarge]
	}
	var action float64
	for _, w := range windows.charge {
		if w.contains(t.Hour) {
			action = -s.PowerKW
		}
	}
	for _, w := range windows.discharge {
		if w.contains(t.Hour) {
			action = s.PowerKW
		}
	}
	return storageState(t, action, s.RTE)
}

// StorageValueStacking layers PV self-consumption, demand shaving and price
// arbitrage in that priority order.
type StorageValueStacking struct {
	PowerKW           float64
	RTE               float64
	PVSelfConsumption bool
	DemandManagement  bool
	DynamicPricing    bool
	// DemandThresholdKW of zero means types.DefaultDemandThresholdKW.
	DemandThresholdKW float64
	// MinSiteLoadKW of zero means types.DefaultStorageMinimumSiteLoadKW.
	MinSiteLoadKW float64
}

func (s StorageValueStacking) Name() string { return "storage-ai" }

func (s StorageValueStacking) Step(t Tick) types.HourlyState {
	threshold := s.DemandThresholdKW
	if threshold <= 0 {
		threshold = types.DefaultDemandThresholdKW
	}
	floor := s.MinSiteLoadKW
	if floor <= 0 {
		floor = types.DefaultStorageMinimumSiteLoadKW
	}
	net := math.Max(0, t.Load-t.Generation)

	var action float64
	switch {
	case s.PVSelfConsumption && t.Generation > t.Load:
		action = -math.Min(s.PowerKW, t.Generation-t.Load)
	case s.DemandManagement && net > threshold:
		action = math.Min(s.PowerKW, net-threshold)
	case s.DynamicPricing && t.AvgPrice > 0 && t.Price < 0.6*t.AvgPrice:
		action = -s.PowerKW
	case s.DynamicPricing && t.AvgPrice > 0 && t.Price > 1.4*t.AvgPrice:
		action = s.PowerKW
	}

	// discharge never pushes the site below the minimum load
	if action > 0 {
		rte := effectiveRTE(s.RTE)
		action = math.Min(action, math.Max(0, net-floor)/rte)
	}
	return storageState(t, action, s.RTE)
}

func effectiveRTE(rte float64) float64 {
	if rte <= 0 {
		return 1
	}
	return rte
}

// storageState turns a signed action (positive discharge) into the site's
// grid draw before and after the battery. Surplus discharge is not exported.
func storageState(t Tick, action, rte float64) types.HourlyState {
	delivered := action
	if action > 0 {
		delivered = action * effectiveRTE(rte)
	}
	return types.HourlyState{
		BaselineValue:   math.Max(0, t.Load-t.Generation),
		AdjustedValue:   math.Max(0, t.Load-t.Generation-delivered),
		ActionMagnitude: action,
		FlowState:       flowFromAction(action),
	}
}
