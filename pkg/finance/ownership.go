package finance

import (
	"github.com/raterudder/retrofit/pkg/types"
)

// RevenueStreams is one year of benefit before it is divided between the site
// owner and the investor. Energy is in 万kWh and money in the monetary unit,
// so value = energy·price holds without conversion.
type RevenueStreams struct {
	SelfUseEnergy  float64 `json:"selfUseEnergy"`
	SelfUseValue   float64 `json:"selfUseValue"`
	GridRevenue    float64 `json:"gridRevenue"`
	ReferencePrice float64 `json:"referencePrice"` // yuan/kWh
	// SidePayment moves from the investor to the owner, e.g. roof rent.
	SidePayment float64 `json:"sidePayment"`
}

// Total is the combined benefit across both parties.
func (r RevenueStreams) Total() float64 {
	return r.SelfUseValue + r.GridRevenue
}

// Shares is the benefit each party receives.
type Shares struct {
	Investor float64 `json:"investor"`
	Owner    float64 `json:"owner"`
}

// Split divides revenue according to the ownership contract.
func Split(cfg types.OwnershipConfig, r RevenueStreams) Shares {
	switch cfg.Mode {
	case types.OwnershipEMCSharing:
		share := cfg.OwnerSharePct / 100
		return Shares{
			Owner:    r.SelfUseValue*share + r.SidePayment,
			Investor: r.SelfUseValue*(1-share) + r.GridRevenue - r.SidePayment,
		}
	case types.OwnershipEMCDiscount:
		return Shares{
			Investor: r.SelfUseEnergy*cfg.InvestorSellPrice + r.GridRevenue - r.SidePayment,
			Owner:    r.SelfUseEnergy*(r.ReferencePrice-cfg.InvestorSellPrice) + r.SidePayment,
		}
	default:
		total := r.Total()
		return Shares{Investor: total, Owner: total}
	}
}
