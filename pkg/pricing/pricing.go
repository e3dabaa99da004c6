// Package pricing resolves hourly electricity prices from a tariff
// configuration.
package pricing

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/raterudder/retrofit/pkg/types"
)

// Resolve returns the price for hour under cfg. Hours missing from an
// imported series resolve to the import fallback price.
func Resolve(cfg types.PriceConfig, hour int) (float64, error) {
	if hour < 0 || hour > 23 {
		return 0, types.NewConfigurationError("hour", "%d out of range", hour)
	}
	switch cfg.Mode {
	case types.PriceModeFixed:
		return cfg.FixedPrice, nil
	case types.PriceModeTOU:
		return touPrice(cfg, hour), nil
	case types.PriceModeSpot:
		if len(cfg.SpotPrices) != 24 {
			return 0, types.NewConfigurationError("price.spotPrices", "expected 24 prices, got %d", len(cfg.SpotPrices))
		}
		return cfg.SpotPrices[hour], nil
	case types.PriceModeImported:
		p, err := importedPrice(cfg, hour)
		if err != nil {
			return cfg.ImportFallback(), nil
		}
		return p, nil
	case types.PriceModeVolatile:
		curve := volatileCurve(rand.New(rand.NewSource(cfg.Seed)))
		return curve[hour].Price, nil
	default:
		return 0, types.NewConfigurationError("price.mode", "unknown mode %q", cfg.Mode)
	}
}

// touPrice finds the segment containing hour. When segments overlap the last
// match in list order wins.
func touPrice(cfg types.PriceConfig, hour int) float64 {
	price := cfg.TOUFallback()
	for _, s := range cfg.Segments {
		if hour >= s.Start && hour < s.End {
			price = s.Price
		}
	}
	return price
}

func importedPrice(cfg types.PriceConfig, hour int) (float64, error) {
	for _, p := range cfg.Imported {
		if p.Hour == hour {
			return p.Price, nil
		}
	}
	return 0, fmt.Errorf("hour %d: %w", hour, types.ErrDataGap)
}

// Curve resolves all 24 hours. Volatile curves are seeded from cfg.Seed so
// the same configuration always produces the same curve.
func Curve(cfg types.PriceConfig) ([]types.HourlyPricePoint, error) {
	return CurveWithRand(cfg, rand.New(rand.NewSource(cfg.Seed)))
}

// CurveWithRand resolves all 24 hours, drawing volatile prices from rng.
func CurveWithRand(cfg types.PriceConfig, rng *rand.Rand) ([]types.HourlyPricePoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == types.PriceModeVolatile {
		return volatileCurve(rng), nil
	}
	curve := make([]types.HourlyPricePoint, 24)
	for h := range curve {
		p, err := Resolve(cfg, h)
		if err != nil {
			return nil, err
		}
		curve[h] = types.HourlyPricePoint{Hour: h, Price: p}
	}
	return curve, nil
}

// MissingHours lists the hours an imported series falls back on.
func MissingHours(cfg types.PriceConfig) []int {
	if cfg.Mode != types.PriceModeImported {
		return nil
	}
	var missing []int
	for h := 0; h < 24; h++ {
		if _, err := importedPrice(cfg, h); err != nil {
			missing = append(missing, h)
		}
	}
	return missing
}

// Average returns the mean price of curve, or 0 for an empty curve.
func Average(curve []types.HourlyPricePoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	var sum float64
	for _, p := range curve {
		sum += p.Price
	}
	return sum / float64(len(curve))
}

// ReferencePrice is the retail price used to value self-consumed energy.
func ReferencePrice(cfg types.PriceConfig) (float64, error) {
	if cfg.Mode == types.PriceModeFixed {
		if err := cfg.Validate(); err != nil {
			return 0, err
		}
		return cfg.FixedPrice, nil
	}
	curve, err := Curve(cfg)
	if err != nil {
		return 0, err
	}
	return Average(curve), nil
}

// Prices extracts the bare price values of a curve.
func Prices(curve []types.HourlyPricePoint) []float64 {
	out := make([]float64, len(curve))
	for i, p := range curve {
		out[i] = p.Price
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
