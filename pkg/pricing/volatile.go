package pricing

import (
	"math"
	"math/rand"

	"github.com/raterudder/retrofit/pkg/types"
)

const (
	volatileBase       = 0.4
	volatileSpread     = 0.4
	volatilePeakBonus  = 0.8
	volatileTroughDisc = 0.2
)

// volatileCurve synthesises a spot-like day. Draws happen in hour order so a
// given rng state always yields the same curve.
func volatileCurve(rng *rand.Rand) []types.HourlyPricePoint {
	curve := make([]types.HourlyPricePoint, 24)
	for h := range curve {
		price := volatileBase + rng.Float64()*volatileSpread
		if h > 16 && h < 20 {
			price += volatilePeakBonus
		}
		if h > 2 && h < 6 {
			price -= volatileTroughDisc
		}
		curve[h] = types.HourlyPricePoint{
			Hour:  h,
			Price: math.Max(types.VolatilePriceFloor, round2(price)),
		}
	}
	return curve
}
