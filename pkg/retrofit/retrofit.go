// Package retrofit evaluates a scenario end to end: it resolves prices,
// simulates the representative day with the asset's dispatch policy and
// projects the multi-year cash flows.
package retrofit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raterudder/retrofit/pkg/finance"
	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/profile"
	"github.com/raterudder/retrofit/pkg/types"
)

// Evaluator evaluates scenarios.
type Evaluator interface {
	Evaluate(ctx context.Context, s types.Scenario) (types.Result, error)
}

// Engine is the default Evaluator.
type Engine struct {
	// Estimator is used for campus self-consumption. Nil means
	// profile.CampusHeuristic.
	Estimator profile.SelfConsumptionEstimator
}

var _ Evaluator = Engine{}

// Evaluate runs s with a zero Engine.
func Evaluate(ctx context.Context, s types.Scenario) (types.Result, error) {
	return Engine{}.Evaluate(ctx, s)
}

// Evaluate validates s and runs the adapter for its asset. The result does
// not carry a run ID or timestamp so identical scenarios produce identical
// results.
func (e Engine) Evaluate(ctx context.Context, s types.Scenario) (types.Result, error) {
	if err := s.Validate(); err != nil {
		return types.Result{}, err
	}
	if s.Asset != types.AssetSolar && s.Ownership.Mode == types.OwnershipEMCDiscount {
		return types.Result{}, types.NewConfigurationError("ownership.mode", "%q only applies to solar", s.Ownership.Mode)
	}

	var (
		res types.Result
		err error
	)
	switch s.Asset {
	case types.AssetSolar:
		res, err = e.evaluateSolar(ctx, s)
	case types.AssetStorage:
		res, err = evaluateStorage(ctx, s)
	case types.AssetHVAC:
		res, err = evaluateHVAC(ctx, s)
	case types.AssetMicrogrid:
		res, err = evaluateMicrogrid(ctx, s)
	default:
		return types.Result{}, types.NewConfigurationError("asset", "unknown asset %q", s.Asset)
	}
	if err != nil {
		return types.Result{}, fmt.Errorf("failed to evaluate %s scenario: %w", s.Asset, err)
	}
	res.Asset = s.Asset
	res.ScenarioID = s.ID

	log.Ctx(ctx).InfoContext(
		ctx,
		"evaluated scenario",
		slog.String("asset", string(s.Asset)),
		slog.String("ownership", string(s.Ownership.Mode)),
		slog.Float64("investment", res.Summary.Investment),
		slog.Float64("netBenefit", res.Summary.NetBenefit),
		slog.Any("payback", res.Summary.Payback),
	)
	return res, nil
}

// ownershipStreams attaches an annual benefit to RevenueStreams for assets
// that only produce bill savings.
func ownershipStreams(savingWan, referencePrice float64) finance.RevenueStreams {
	return finance.RevenueStreams{
		SelfUseValue:   savingWan,
		ReferencePrice: referencePrice,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
