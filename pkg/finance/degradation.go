package finance

import "math"

// Degradation returns the output factor for a 1-based year.
type Degradation func(year int) float64

// NoDegradation keeps output constant.
func NoDegradation(int) float64 { return 1 }

// SolarDegradation drops output by firstPct in year one and by linearPct,
// compounded, every year after.
func SolarDegradation(firstPct, linearPct float64) Degradation {
	return func(year int) float64 {
		if year < 1 {
			return 1
		}
		return (1 - firstPct/100) * math.Pow(1-linearPct/100, float64(year-1))
	}
}

// FlatDegradation compounds pct every year after the first.
func FlatDegradation(pct float64) Degradation {
	return func(year int) float64 {
		if year < 1 {
			return 1
		}
		return math.Pow(1-pct/100, float64(year-1))
	}
}
