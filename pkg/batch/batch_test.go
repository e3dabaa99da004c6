package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raterudder/retrofit/pkg/retrofit"
	"github.com/raterudder/retrofit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEvaluator struct {
	calls atomic.Int32
	err   error
}

func (c *countingEvaluator) Evaluate(ctx context.Context, s types.Scenario) (types.Result, error) {
	c.calls.Add(1)
	if c.err != nil {
		return types.Result{}, c.err
	}
	return retrofit.Evaluate(ctx, s)
}

func defaults(t *testing.T) []types.Scenario {
	var out []types.Scenario
	for _, kind := range types.AssetKinds() {
		s, ok := types.DefaultScenario(kind)
		require.True(t, ok)
		out = append(out, s)
	}
	return out
}

func TestRunnerRun(t *testing.T) {
	ctx := context.Background()
	eval := &countingEvaluator{}
	r := New(eval, 2, 8)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	s, _ := types.DefaultScenario(types.AssetStorage)
	first, cached, err := r.Run(ctx, s)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, fixed, first.CreatedAt)

	second, cached, err := r.Run(ctx, s)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Summary, second.Summary)
	assert.EqualValues(t, 1, eval.calls.Load())

	s.Storage.PowerKW = 50
	_, cached, err = r.Run(ctx, s)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.EqualValues(t, 2, eval.calls.Load())
}

func TestRunnerRunAll(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves order", func(t *testing.T) {
		r := New(&countingEvaluator{}, 3, 0)
		scenarios := defaults(t)
		scenarios = append(scenarios, types.Scenario{Asset: "wind"})

		outcomes, err := r.RunAll(ctx, scenarios)
		require.NoError(t, err)
		require.Len(t, outcomes, len(scenarios))
		for i, o := range outcomes[:len(outcomes)-1] {
			assert.Equal(t, i, o.Index)
			require.NotNil(t, o.Result, "scenario %d: %s", i, o.Error)
			assert.Equal(t, scenarios[i].Asset, o.Result.Asset)
		}
		last := outcomes[len(outcomes)-1]
		assert.Nil(t, last.Result)
		assert.NotEmpty(t, last.Error)
	})

	t.Run("errors stay per scenario", func(t *testing.T) {
		r := New(&countingEvaluator{err: errors.New("boom")}, 2, 0)
		outcomes, err := r.RunAll(ctx, defaults(t))
		require.NoError(t, err)
		for _, o := range outcomes {
			assert.Equal(t, "boom", o.Error)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := New(&countingEvaluator{}, 1, 0).RunAll(cctx, defaults(t))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("identical scenarios share a cache entry", func(t *testing.T) {
		eval := &countingEvaluator{}
		r := New(eval, 1, 4)
		s, _ := types.DefaultScenario(types.AssetSolar)
		outcomes, err := r.RunAll(ctx, []types.Scenario{s, s, s})
		require.NoError(t, err)
		assert.EqualValues(t, 1, eval.calls.Load())
		assert.False(t, outcomes[0].Cached)
		assert.True(t, outcomes[2].Cached)
	})
}

func TestCache(t *testing.T) {
	c := NewCache(2)
	c.Add(1, types.Result{ScenarioID: "a"})
	c.Add(2, types.Result{ScenarioID: "b"})
	_, ok := c.Get(1)
	assert.True(t, ok)

	c.Add(3, types.Result{ScenarioID: "c"})
	assert.Equal(t, 2, c.Len())
	_, ok = c.Get(2)
	assert.False(t, ok, "least recently used entry is evicted")
	r, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", r.ScenarioID)

	disabled := NewCache(0)
	disabled.Add(1, types.Result{})
	assert.Equal(t, 0, disabled.Len())
	_, ok = disabled.Get(1)
	assert.False(t, ok)

	negative := NewCache(-1)
	negative.Add(1, types.Result{})
	assert.Equal(t, 0, negative.Len())
}

func TestKey(t *testing.T) {
	a, _ := types.DefaultScenario(types.AssetHVAC)
	b := a.Clone()
	ka, err := Key(a)
	require.NoError(t, err)
	kb, err := Key(b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)

	b.HVAC.Buildings[0].LoadKW++
	kb, err = Key(b)
	require.NoError(t, err)
	assert.NotEqual(t, ka, kb)
}

func TestRunnerCachedResultIsolated(t *testing.T) {
	ctx := context.Background()
	r := New(retrofit.Engine{}, 1, 8)
	s, _ := types.DefaultScenario(types.AssetStorage)

	first, cached, err := r.Run(ctx, s)
	require.NoError(t, err)
	require.False(t, cached)
	require.Greater(t, len(first.Summary.CashFlows), 1)
	want := first.Clone()

	first.Summary.CashFlows[1] = -999
	first.Hourly[0].Price = -1
	first.Years[1].Revenue = -1
	first.Prices[0].Price = -1
	first.Notes = append(first.Notes[:0], "edited")

	second, cached, err := r.Run(ctx, s)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, want.Summary, second.Summary)
	assert.Equal(t, want.Hourly, second.Hourly)
	assert.Equal(t, want.Years, second.Years)
	assert.Equal(t, want.Prices, second.Prices)
	assert.Equal(t, want.Notes, second.Notes)

	// editing a cache hit does not leak into the next one either
	second.Summary.CashFlows[1] = -999
	third, _, err := r.Run(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, want.Summary.CashFlows, third.Summary.CashFlows)
}
