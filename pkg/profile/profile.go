// Package profile produces hourly load and generation curves for a
// representative day.
package profile

import "math"

// CommercialBaseline is the load (kW) of a typical commercial building at
// hour h, with a night setback outside 06:00-22:00.
func CommercialBaseline(h int) float64 {
	load := math.Max(100, 200+300*math.Sin(float64(h-8)/16*math.Pi))
	if h > 22 || h < 6 {
		load *= 0.6
	}
	return load
}

// StorageSiteLoad is the industrial load shape (kW) used for storage sizing.
func StorageSiteLoad(h int) float64 {
	switch {
	case h < 8:
		return 55
	case h < 12:
		return 210
	case h < 14:
		return 160
	case h < 18:
		return 230
	default:
		return 85
	}
}

// SolarOutput is the bell-shaped PV output (kW) at hour h for a system of
// capacityKWp, peaking at 75% of nameplate at noon.
func SolarOutput(h int, capacityKWp float64) float64 {
	if capacityKWp <= 0 || h < 6 || h > 18 {
		return 0
	}
	peak := capacityKWp * 0.75
	d := float64(h - 12)
	return peak * math.Exp(-(d*d)/8)
}

// Day evaluates fn for every hour of the day.
func Day(fn func(h int) float64) []float64 {
	out := make([]float64, 24)
	for h := range out {
		out[h] = fn(h)
	}
	return out
}

// SolarDay is SolarOutput for all 24 hours.
func SolarDay(capacityKWp float64) []float64 {
	return Day(func(h int) float64 { return SolarOutput(h, capacityKWp) })
}

// AnnualSolarYield is the first-year generation in kWh.
func AnnualSolarYield(capacityKWp, sunHours float64, days int, prPct, azimuthPct float64) float64 {
	if capacityKWp <= 0 || sunHours <= 0 || days <= 0 {
		return 0
	}
	return capacityKWp * sunHours * float64(days) * prPct / 100 * azimuthPct / 100
}
