package types

// PriceMode selects how hourly prices are produced.
type PriceMode string

const (
	PriceModeFixed    PriceMode = "fixed"
	PriceModeTOU      PriceMode = "tou"
	PriceModeSpot     PriceMode = "spot"
	PriceModeImported PriceMode = "imported"
	PriceModeVolatile PriceMode = "volatile"
)

const (
	// DefaultTOUFallbackPrice applies to hours not covered by any segment.
	DefaultTOUFallbackPrice = 0.8
	// DefaultImportFallbackPrice applies to hours missing from an imported series.
	DefaultImportFallbackPrice = 0.35
	// VolatilePriceFloor is the lowest price the synthetic generator emits.
	VolatilePriceFloor = 0.2
)

// HourlyPricePoint is the price (yuan/kWh) for one hour of the day.
type HourlyPricePoint struct {
	Hour  int     `json:"hour" yaml:"hour"`
	Price float64 `json:"price" yaml:"price"`
}

// TOUSegment applies Price to hours in [Start, End).
type TOUSegment struct {
	Start int     `json:"start" yaml:"start"`
	End   int     `json:"end" yaml:"end"`
	Price float64 `json:"price" yaml:"price"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// PriceConfig describes the electricity tariff. Only the fields relevant to
// Mode are consulted.
type PriceConfig struct {
	Mode       PriceMode          `json:"mode" yaml:"mode"`
	FixedPrice float64            `json:"fixedPrice,omitempty" yaml:"fixedPrice,omitempty"`
	Segments   []TOUSegment       `json:"segments,omitempty" yaml:"segments,omitempty"`
	SpotPrices []float64          `json:"spotPrices,omitempty" yaml:"spotPrices,omitempty"`
	Imported   []HourlyPricePoint `json:"imported,omitempty" yaml:"imported,omitempty"`

	// FallbackPrice is used for ToU gaps. Zero means DefaultTOUFallbackPrice.
	FallbackPrice float64 `json:"fallbackPrice,omitempty" yaml:"fallbackPrice,omitempty"`
	// ImportFallbackPrice is used for hours missing from Imported. Zero means
	// DefaultImportFallbackPrice.
	ImportFallbackPrice float64 `json:"importFallbackPrice,omitempty" yaml:"importFallbackPrice,omitempty"`

	// Seed drives the volatile generator.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// TOUFallback returns the price used for hours outside every segment.
func (c PriceConfig) TOUFallback() float64 {
	if c.FallbackPrice > 0 {
		return c.FallbackPrice
	}
	return DefaultTOUFallbackPrice
}

// ImportFallback returns the price used for hours without imported data.
func (c PriceConfig) ImportFallback() float64 {
	if c.ImportFallbackPrice > 0 {
		return c.ImportFallbackPrice
	}
	return DefaultImportFallbackPrice
}

// Validate rejects malformed price configurations.
func (c PriceConfig) Validate() error {
	if err := checkNonNegative("price.fallbackPrice", c.FallbackPrice); err != nil {
		return err
	}
	if err := checkNonNegative("price.importFallbackPrice", c.ImportFallbackPrice); err != nil {
		return err
	}
	switch c.Mode {
	case PriceModeFixed:
		return checkNonNegative("price.fixedPrice", c.FixedPrice)
	case PriceModeTOU:
		for i, s := range c.Segments {
			if s.Start < 0 || s.End > 24 || s.Start >= s.End {
				return NewConfigurationError("price.segments", "segment %d has invalid hours [%d,%d)", i, s.Start, s.End)
			}
			if err := checkNonNegative("price.segments.price", s.Price); err != nil {
				return err
			}
		}
		return nil
	case PriceModeSpot:
		if len(c.SpotPrices) != 24 {
			return NewConfigurationError("price.spotPrices", "expected 24 prices, got %d", len(c.SpotPrices))
		}
		for _, p := range c.SpotPrices {
			if err := checkNonNegative("price.spotPrices", p); err != nil {
				return err
			}
		}
		return nil
	case PriceModeImported:
		seen := make(map[int]bool, len(c.Imported))
		for _, p := range c.Imported {
			if p.Hour < 0 || p.Hour > 23 {
				return NewConfigurationError("price.imported", "hour %d out of range", p.Hour)
			}
			if seen[p.Hour] {
				return NewConfigurationError("price.imported", "duplicate hour %d", p.Hour)
			}
			seen[p.Hour] = true
			if err := checkNonNegative("price.imported.price", p.Price); err != nil {
				return err
			}
		}
		return nil
	case PriceModeVolatile:
		return nil
	default:
		return NewConfigurationError("price.mode", "unknown mode %q", c.Mode)
	}
}
