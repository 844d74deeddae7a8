package profit

import (
	"math"
	"math/rand"
	"testing"

	"fleet-oracle/config"
	"fleet-oracle/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFleet(t *testing.T, size int) *strategy.Fleet {
	t.Helper()
	fleet, err := strategy.NewFleet(&config.FleetConfig{
		Size:           size,
		BaseAllocation: 1000,
		VolatilityMin:  0.01,
		VolatilityMax:  0.06,
	}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return fleet
}

func newTestAggregator() *Aggregator {
	return NewAggregator(&config.FailoverConfig{
		DeriskThreshold:  -500,
		DeriskMultiplier: 0.8,
	})
}

func TestEvaluateTotalsAndCriticalCount(t *testing.T) {
	fleet := newTestFleet(t, 4)
	pnls := []float64{100, -20, -60, -75}
	for i, s := range fleet.Strategies() {
		s.PnL = pnls[i]
	}

	agg, err := newTestAggregator().Evaluate(fleet)
	require.NoError(t, err)

	assert.InDelta(t, -55.0, agg.TotalPnL, 1e-9)
	assert.Equal(t, 2, agg.CriticalCount)

	wantStatuses := []strategy.Status{strategy.Healthy, strategy.Warning, strategy.Critical, strategy.Critical}
	for i, s := range fleet.Strategies() {
		assert.Equal(t, wantStatuses[i], s.Status)
		assert.Equal(t, strategy.StatusFor(s.PnL), s.Status, "stored status must match the pure function")
	}
}

func TestMultiplierPolicyDeriskAndReset(t *testing.T) {
	fleet := newTestFleet(t, 3)
	agg := newTestAggregator()

	// Below the derisk threshold: every multiplier flips to 0.8, uniformly.
	for _, s := range fleet.Strategies() {
		s.PnL = -200
	}
	result, err := agg.Evaluate(fleet)
	require.NoError(t, err)
	assert.InDelta(t, -600.0, result.TotalPnL, 1e-9)
	assert.Equal(t, 0.8, result.Multiplier)
	for _, s := range fleet.Strategies() {
		assert.Equal(t, 0.8, s.Multiplier)
	}

	// Recovery to the threshold or above: every multiplier resets to 1.0.
	for _, s := range fleet.Strategies() {
		s.PnL = -100
	}
	result, err = agg.Evaluate(fleet)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Multiplier)
	for _, s := range fleet.Strategies() {
		assert.Equal(t, 1.0, s.Multiplier)
	}
}

func TestMultiplierBoundaryIsExclusive(t *testing.T) {
	// The derisk comparison is strict: exactly -500 does not derisk.
	fleet := newTestFleet(t, 1)
	fleet.Strategies()[0].PnL = -500

	result, err := newTestAggregator().Evaluate(fleet)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Multiplier)

	fleet.Strategies()[0].PnL = -500.01
	result, err = newTestAggregator().Evaluate(fleet)
	require.NoError(t, err)
	assert.Equal(t, 0.8, result.Multiplier)
}

func TestEvaluateRejectsNonFinitePnL(t *testing.T) {
	fleet := newTestFleet(t, 2)
	fleet.Strategies()[1].PnL = math.NaN()

	_, err := newTestAggregator().Evaluate(fleet)
	require.Error(t, err)

	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 2, inv.StrategyID)
}

func TestEvaluateDeterministicAfterSeededTicks(t *testing.T) {
	run := func() Aggregate {
		fleet, err := strategy.NewFleet(&config.FleetConfig{
			Size:                 5,
			BaseAllocation:       1000,
			VolatilityMin:        0.01,
			VolatilityMax:        0.06,
			DegradingStrategyIDs: []int{1, 5},
			DegradationDrift:     10,
		}, rand.New(rand.NewSource(3)))
		require.NoError(t, err)

		agg := newTestAggregator()
		rng := rand.New(rand.NewSource(11))
		var result Aggregate
		for i := 0; i < 25; i++ {
			fleet.ApplyTick(rng)
			result, err = agg.Evaluate(fleet)
			require.NoError(t, err)
		}
		return result
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}
