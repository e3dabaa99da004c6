package finance

import (
	"math"

	"github.com/raterudder/retrofit/pkg/types"
)

// Projection is the input to Project. Money is in the monetary unit.
type Projection struct {
	Investment float64
	// Streams is the undegraded first-year revenue.
	Streams   RevenueStreams
	Ownership types.OwnershipConfig
	Finance   types.FinanceParams
	Horizon   int
	// Degradation of nil means NoDegradation.
	Degradation Degradation
	// FixedOpex is added to the percentage-based O&M every year.
	FixedOpex float64
	// Output is the undegraded first-year generation or load, in kWh.
	Output float64
}

// Project builds the yearly ledger and its summary. Year 0 of the ledger
// carries the investment. O&M and tax are deducted from the investor's
// revenue before each year's cash flow.
func Project(p Projection) ([]types.YearFinancials, types.FinancialSummary) {
	degrade := p.Degradation
	if degrade == nil {
		degrade = NoDegradation
	}
	horizon := max(p.Horizon, 0)
	f := p.Finance

	years := make([]types.YearFinancials, 0, horizon+1)
	cashFlows := make([]float64, 0, horizon+1)
	years = append(years, types.YearFinancials{
		NetCashFlow:        -p.Investment,
		CumulativeCashFlow: -p.Investment,
	})
	cashFlows = append(cashFlows, -p.Investment)

	cumulative := -p.Investment
	var first types.YearFinancials
	for y := 1; y <= horizon; y++ {
		factor := degrade(y)
		escalation := math.Pow(1+f.PriceEscalationPct/100, float64(y-1))

		streams := RevenueStreams{
			SelfUseEnergy:  p.Streams.SelfUseEnergy * factor,
			SelfUseValue:   p.Streams.SelfUseValue * factor * escalation,
			GridRevenue:    p.Streams.GridRevenue * factor * escalation,
			ReferencePrice: p.Streams.ReferencePrice * escalation,
			SidePayment:    p.Streams.SidePayment,
		}
		ownership := p.Ownership
		ownership.InvestorSellPrice *= escalation
		shares := Split(ownership, streams)

		opex := p.Investment*(f.OMRatePct+f.InsuranceRatePct)/100*math.Pow(1+f.OMEscalationPct/100, float64(y-1)) + p.FixedOpex
		tax := max(0, shares.Investor-opex) * f.TaxRatePct / 100
		net := shares.Investor - opex - tax
		cumulative += net

		row := types.YearFinancials{
			Year:               y,
			GenerationOrLoad:   p.Output * factor,
			Revenue:            shares.Investor,
			OwnerBenefit:       shares.Owner,
			Opex:               opex,
			Tax:                tax,
			NetCashFlow:        net,
			CumulativeCashFlow: cumulative,
		}
		if y == 1 {
			first = row
		}
		years = append(years, row)
		cashFlows = append(cashFlows, net)
	}

	summary := types.FinancialSummary{
		Investment:   p.Investment,
		AnnualSaving: first.Revenue,
		NetBenefit:   first.NetCashFlow,
		ROI:          ROI(first.NetCashFlow, p.Investment),
		Payback:      Payback(cashFlows),
		IRR:          IRR(cashFlows),
		CashFlows:    cashFlows,
	}
	if f.DiscountRatePct > 0 {
		npv := NPV(cashFlows, f.DiscountRatePct/100)
		summary.NPV = &npv
	}
	return years, summary
}
