package types

// OwnershipMode is the contract under which a retrofit is financed.
type OwnershipMode string

const (
	OwnershipSelf        OwnershipMode = "self"
	OwnershipLoan        OwnershipMode = "loan"
	OwnershipEPC         OwnershipMode = "epc"
	OwnershipEMCSharing  OwnershipMode = "emc_sharing"
	OwnershipEMCDiscount OwnershipMode = "emc_discount"
)

// OwnershipConfig splits the benefit of a retrofit between the site owner
// and the investor.
type OwnershipConfig struct {
	Mode OwnershipMode `json:"mode" yaml:"mode"`
	// OwnerSharePct is the owner's share of savings under emc_sharing.
	OwnerSharePct float64 `json:"ownerSharePct,omitempty" yaml:"ownerSharePct,omitempty"`
	// InvestorSellPrice is the discounted price (yuan/kWh) the investor sells
	// self-used energy at under emc_discount. It is expected to be below the
	// retail reference price but that is not enforced.
	InvestorSellPrice float64 `json:"investorSellPrice,omitempty" yaml:"investorSellPrice,omitempty"`
	// EPCUnitPrice overrides the asset's unit cost under epc.
	EPCUnitPrice float64 `json:"epcUnitPrice,omitempty" yaml:"epcUnitPrice,omitempty"`
}

// IsEMC reports whether a third-party investor is involved.
func (o OwnershipConfig) IsEMC() bool {
	return o.Mode == OwnershipEMCSharing || o.Mode == OwnershipEMCDiscount
}

// Validate checks the mode and its parameters.
func (o OwnershipConfig) Validate() error {
	switch o.Mode {
	case OwnershipSelf, OwnershipLoan:
	case OwnershipEPC:
		if err := checkNonNegative("ownership.epcUnitPrice", o.EPCUnitPrice); err != nil {
			return err
		}
	case OwnershipEMCSharing:
		if err := checkPercent("ownership.ownerSharePct", o.OwnerSharePct); err != nil {
			return err
		}
	case OwnershipEMCDiscount:
		if err := checkNonNegative("ownership.investorSellPrice", o.InvestorSellPrice); err != nil {
			return err
		}
	default:
		return NewConfigurationError("ownership.mode", "unknown mode %q", o.Mode)
	}
	return nil
}
