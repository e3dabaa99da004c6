package dispatch

import (
	"context"
	"testing"

	"github.com/raterudder/retrofit/pkg/profile"
	"github.com/raterudder/retrofit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageTestPrices() []types.HourlyPricePoint {
	var prices []types.HourlyPricePoint
	add := func(n int, p float64) {
		for i := 0; i < n; i++ {
			prices = append(prices, types.HourlyPricePoint{Hour: len(prices), Price: p})
		}
	}
	add(8, 0.35)
	add(3, 1.1)
	add(2, 0.7)
	add(2, 1.1)
	add(9, 0.7)
	return prices
}

func flatPrices(p float64) []types.HourlyPricePoint {
	prices := make([]types.HourlyPricePoint, 24)
	for h := range prices {
		prices[h] = types.HourlyPricePoint{Hour: h, Price: p}
	}
	return prices
}

func dailySaving(states []types.HourlyState) float64 {
	var saving float64
	for _, s := range states {
		saving += (s.BaselineValue - s.AdjustedValue) * s.Price
	}
	return saving
}

func TestSimulate(t *testing.T) {
	ctx := context.Background()
	load := profile.Day(profile.StorageSiteLoad)

	t.Run("rejects short inputs", func(t *testing.T) {
		_, err := Simulate(ctx, SolarOffset{}, flatPrices(1)[:23], load, nil)
		assert.ErrorIs(t, err, types.ErrConfiguration)

		_, err = Simulate(ctx, SolarOffset{}, flatPrices(1), load[:12], nil)
		assert.ErrorIs(t, err, types.ErrConfiguration)

		_, err = Simulate(ctx, SolarOffset{}, flatPrices(1), load, make([]float64, 3))
		assert.ErrorIs(t, err, types.ErrConfiguration)
	})

	t.Run("stamps hour and price", func(t *testing.T) {
		prices := storageTestPrices()
		states, err := Simulate(ctx, LoadShift{Aggressiveness: 50}, prices, load, nil)
		require.NoError(t, err)
		require.Len(t, states, 24)
		for h, s := range states {
			assert.Equal(t, h, s.Hour)
			assert.Equal(t, prices[h].Price, s.Price)
		}
	})

	t.Run("total on degenerate prices", func(t *testing.T) {
		policies := []Policy{
			StorageSchedule{Strategy: types.StorageTwoChargeTwoDischarge, PowerKW: 100},
			StorageValueStacking{PowerKW: 100, DynamicPricing: true, DemandManagement: true},
			LoadShift{Aggressiveness: 100},
			SolarOffset{},
		}
		for _, p := range policies {
			for _, price := range []float64{0, 0.7} {
				states, err := Simulate(ctx, p, flatPrices(price), load, profile.SolarDay(100))
				require.NoError(t, err, p.Name())
				assert.Len(t, states, 24)
			}
		}
	})
}

func TestStorageSchedule(t *testing.T) {
	ctx := context.Background()
	load := profile.Day(profile.StorageSiteLoad)

	t.Run("2c2d lossless", func(t *testing.T) {
		p := StorageSchedule{Strategy: types.StorageTwoChargeTwoDischarge, PowerKW: 100}
		states, err := Simulate(ctx, p, storageTestPrices(), load, nil)
		require.NoError(t, err)

		assert.Equal(t, types.FlowCharge, states[0].FlowState)
		assert.Equal(t, types.FlowIdle, states[7].FlowState)
		assert.Equal(t, types.FlowDischarge, states[9].FlowState)
		assert.Equal(t, types.FlowCharge, states[12].FlowState)
		assert.Equal(t, types.FlowDischarge, states[20].FlowState)
		assert.Equal(t, types.FlowIdle, states[21].FlowState)

		// charging raises grid draw by the full power
		assert.InDelta(t, 155, states[0].AdjustedValue, 1e-9)
		// discharge beyond the site load is not exported
		assert.InDelta(t, 0, states[18].AdjustedValue, 1e-9)

		saving := dailySaving(states)
		assert.Greater(t, saving, 0.0)
		assert.InDelta(t, 183.5, saving, 1e-6)
	})

	t.Run("2c2d with round trip losses", func(t *testing.T) {
		p := StorageSchedule{Strategy: types.StorageTwoChargeTwoDischarge, PowerKW: 100, RTE: 0.88}
		states, err := Simulate(ctx, p, storageTestPrices(), load, nil)
		require.NoError(t, err)
		assert.InDelta(t, 131.9, dailySaving(states), 1e-6)
	})

	t.Run("1c1d windows", func(t *testing.T) {
		p := StorageSchedule{Strategy: types.StorageOneChargeOneDischarge, PowerKW: 50}
		states, err := Simulate(ctx, p, storageTestPrices(), load, nil)
		require.NoError(t, err)
		for h := 0; h < 8; h++ {
			assert.Equal(t, types.FlowCharge, states[h].FlowState, "hour %d", h)
		}
		assert.Equal(t, types.FlowIdle, states[8].FlowState)
		assert.Equal(t, types.FlowDischarge, states[11].FlowState)
		assert.Equal(t, types.FlowIdle, states[12].FlowState)
		assert.Equal(t, types.FlowDischarge, states[19].FlowState)
		assert.Equal(t, types.FlowIdle, states[20].FlowState)
	})

	t.Run("identical prices never pay", func(t *testing.T) {
		p := StorageSchedule{Strategy: types.StorageTwoChargeTwoDischarge, PowerKW: 100}
		states, err := Simulate(ctx, p, flatPrices(0.7), load, nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, dailySaving(states), 1e-9)
	})
}

func TestStorageValueStacking(t *testing.T) {
	t.Run("pv surplus first", func(t *testing.T) {
		p := StorageValueStacking{PowerKW: 100, PVSelfConsumption: true, DemandManagement: true, DynamicPricing: true}
		s := p.Step(Tick{Hour: 12, Price: 2, AvgPrice: 1, Load: 100, Generation: 300})
		assert.Equal(t, types.FlowCharge, s.FlowState)
		assert.Equal(t, -100.0, s.ActionMagnitude)

		s = p.Step(Tick{Hour: 12, Price: 1, AvgPrice: 1, Load: 100, Generation: 130})
		assert.Equal(t, -30.0, s.ActionMagnitude)
	})

	t.Run("demand before price", func(t *testing.T) {
		p := StorageValueStacking{PowerKW: 100, DemandManagement: true, DynamicPricing: true}
		s := p.Step(Tick{Hour: 15, Price: 0.1, AvgPrice: 1, Load: 250})
		assert.Equal(t, types.FlowDischarge, s.FlowState)
		assert.InDelta(t, 70, s.ActionMagnitude, 1e-9)
		assert.InDelta(t, 180, s.AdjustedValue, 1e-9)
	})

	t.Run("price arbitrage", func(t *testing.T) {
		p := StorageValueStacking{PowerKW: 100, DynamicPricing: true}
		s := p.Step(Tick{Hour: 3, Price: 0.2, AvgPrice: 1, Load: 100})
		assert.Equal(t, types.FlowCharge, s.FlowState)
		assert.Equal(t, -100.0, s.ActionMagnitude)

		s = p.Step(Tick{Hour: 3, Price: 1, AvgPrice: 1, Load: 100})
		assert.Equal(t, types.FlowIdle, s.FlowState)
	})

	t.Run("discharge respects site floor", func(t *testing.T) {
		p := StorageValueStacking{PowerKW: 100, DynamicPricing: true}
		s := p.Step(Tick{Hour: 18, Price: 2, AvgPrice: 1, Load: 100})
		assert.InDelta(t, 50, s.ActionMagnitude, 1e-9)
		assert.InDelta(t, 50, s.AdjustedValue, 1e-9)

		p.RTE = 0.88
		s = p.Step(Tick{Hour: 18, Price: 2, AvgPrice: 1, Load: 100})
		assert.InDelta(t, 50/0.88, s.ActionMagnitude, 1e-9)
		assert.InDelta(t, 50, s.AdjustedValue, 1e-9)

		s = p.Step(Tick{Hour: 18, Price: 2, AvgPrice: 1, Load: 40})
		assert.Equal(t, types.FlowIdle, s.FlowState)
		assert.Equal(t, 40.0, s.AdjustedValue)
	})

	t.Run("switches off", func(t *testing.T) {
		s := StorageValueStacking{PowerKW: 100}.Step(Tick{Hour: 12, Price: 5, AvgPrice: 1, Load: 400, Generation: 10})
		assert.Equal(t, types.FlowIdle, s.FlowState)
		assert.Equal(t, s.BaselineValue, s.AdjustedValue)
	})
}

func TestLoadShift(t *testing.T) {
	l := LoadShift{Aggressiveness: 50}
	assert.InDelta(t, 0.3, l.Sensitivity(), 1e-12)
	assert.InDelta(t, 0.1, LoadShift{}.Sensitivity(), 1e-12)
	assert.InDelta(t, 0.5, LoadShift{Aggressiveness: 100}.Sensitivity(), 1e-12)

	t.Run("shed", func(t *testing.T) {
		s := l.Step(Tick{Price: 2, AvgPrice: 1, Load: 200})
		assert.Equal(t, types.FlowShed, s.FlowState)
		assert.InDelta(t, 140, s.AdjustedValue, 1e-9)
		assert.InDelta(t, -60, s.ActionMagnitude, 1e-9)
	})

	t.Run("absorb", func(t *testing.T) {
		s := l.Step(Tick{Price: 0.5, AvgPrice: 1, Load: 200})
		assert.Equal(t, types.FlowAbsorb, s.FlowState)
		assert.InDelta(t, 248, s.AdjustedValue, 1e-9)
	})

	t.Run("neutral band trims", func(t *testing.T) {
		s := l.Step(Tick{Price: 1.1, AvgPrice: 1, Load: 200})
		assert.Equal(t, types.FlowIdle, s.FlowState)
		assert.InDelta(t, 195, s.AdjustedValue, 1e-9)
	})

	t.Run("floor", func(t *testing.T) {
		s := l.Step(Tick{Price: 2, AvgPrice: 1, Load: 60})
		assert.InDelta(t, MicrogridMinimumLoadKW, s.AdjustedValue, 1e-9)

		s = l.Step(Tick{Price: 2, AvgPrice: 1, Load: 40})
		assert.InDelta(t, 40, s.AdjustedValue, 1e-9)
	})

	t.Run("zero average price", func(t *testing.T) {
		s := l.Step(Tick{Price: 0, AvgPrice: 0, Load: 200})
		assert.Equal(t, types.FlowIdle, s.FlowState)
	})
}

func TestSolarOffset(t *testing.T) {
	s := SolarOffset{}.Step(Tick{Load: 300, Generation: 100})
	assert.Equal(t, 300.0, s.BaselineValue)
	assert.Equal(t, 200.0, s.AdjustedValue)
	assert.Equal(t, types.FlowDischarge, s.FlowState)

	s = SolarOffset{}.Step(Tick{Load: 50, Generation: 100})
	assert.Equal(t, 0.0, s.AdjustedValue)

	s = SolarOffset{}.Step(Tick{Load: 50})
	assert.Equal(t, types.FlowIdle, s.FlowState)
}

func TestHVACSubstitution(t *testing.T) {
	b := types.HVACBuilding{LoadKW: 500, AreaM2: 10000, RunHours: 2000, Strategy: types.HVACIntermediate}

	t.Run("electric retrofit", func(t *testing.T) {
		o := HVACSubstitution(b, 0, 0.8, 0)
		assert.InDelta(t, 156.25, o.OldKW, 1e-9)
		assert.InDelta(t, 250000, o.BaselineCost, 1e-6)
		assert.InDelta(t, 500/5.2*2000*0.8, o.RetrofitCost, 1e-6)
		assert.InDelta(t, 96153.846, o.Saving, 1e-3)
		assert.InDelta(t, 1250000, o.Investment, 1e-6)
		assert.Zero(t, o.GasM3)
	})

	t.Run("cchp", func(t *testing.T) {
		c := b
		c.Strategy = types.HVACCCHP
		o := HVACSubstitution(c, 3.2, 0.8, 3.5)
		assert.InDelta(t, 38095.238, o.GasM3, 1e-3)
		assert.InDelta(t, 133333.333, o.GasCost, 1e-3)
		assert.InDelta(t, 15238.095, o.ByproductCredit, 1e-3)
		assert.InDelta(t, 131904.762, o.Saving, 1e-3)
		assert.InDelta(t, 4000000, o.Investment, 1e-6)
	})

	t.Run("cost modes", func(t *testing.T) {
		c := b
		c.UnitCost = 300
		c.CostMode = types.HVACCostPerM2
		assert.InDelta(t, 3000000, HVACSubstitution(c, 3.2, 0.8, 0).Investment, 1e-6)

		c.CostMode = types.HVACCostPerKW
		assert.InDelta(t, 150000, HVACSubstitution(c, 3.2, 0.8, 0).Investment, 1e-6)

		c.UnitCost = 12
		c.CostMode = types.HVACCostFixedWan
		assert.InDelta(t, 120000, HVACSubstitution(c, 3.2, 0.8, 0).Investment, 1e-6)

		c.UnitCost = 0
		c.CostMode = types.HVACCostPerM2
		c.AreaM2 = 2000
		assert.InDelta(t, 400000, HVACSubstitution(c, 3.2, 0.8, 0).Investment, 1e-6)
	})

	t.Run("target cop override", func(t *testing.T) {
		c := b
		c.TargetCOP = 6.4
		o := HVACSubstitution(c, 3.2, 1, 0)
		assert.InDelta(t, o.BaselineCost/2, o.RetrofitCost, 1e-9)
	})

	t.Run("schedule", func(t *testing.T) {
		o := HVACSubstitution(b, 3.2, 0.8, 0)
		p := NewHVACSchedule(b, o)
		states, err := Simulate(context.Background(), p, flatPrices(0.8), make([]float64, 24), nil)
		require.NoError(t, err)
		assert.Equal(t, types.FlowIdle, states[7].FlowState)
		assert.Equal(t, types.FlowShed, states[8].FlowState)
		assert.Equal(t, types.FlowShed, states[17].FlowState)
		assert.Equal(t, types.FlowIdle, states[18].FlowState)
		assert.InDelta(t, o.OldKW, states[8].BaselineValue, 1e-9)
		assert.InDelta(t, o.NewKW, states[8].AdjustedValue, 1e-9)
	})

	t.Run("sum", func(t *testing.T) {
		o := HVACSubstitution(b, 3.2, 0.8, 0)
		total := Sum([]HVACOutcome{o, o})
		assert.InDelta(t, 2*o.Saving, total.Saving, 1e-9)
		assert.InDelta(t, 2*o.Investment, total.Investment, 1e-9)
	})
}

func TestStack(t *testing.T) {
	b := types.HVACBuilding{LoadKW: 320, RunHours: 1000, Strategy: types.HVACBasic, ScheduleStart: 9, ScheduleEnd: 17}
	o := HVACSubstitution(b, 3.2, 1, 0)
	s := Stack{NewHVACSchedule(b, o), NewHVACSchedule(b, o)}

	st := s.Step(Tick{Hour: 8})
	assert.Equal(t, types.FlowIdle, st.FlowState)
	assert.Zero(t, st.BaselineValue)

	st = s.Step(Tick{Hour: 9})
	assert.Equal(t, types.FlowShed, st.FlowState)
	assert.InDelta(t, 200, st.BaselineValue, 1e-9)
	assert.InDelta(t, 2*320/4.5, st.AdjustedValue, 1e-9)
}
