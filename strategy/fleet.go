// strategy/fleet.go
package strategy

import (
	"fmt"
	"math/rand"

	"fleet-oracle/config"
)

// Status is the per-strategy health classification, derived purely from PnL.
type Status string

const (
	Healthy  Status = "HEALTHY"
	Warning  Status = "WARNING"
	Critical Status = "CRITICAL"
)

// Status thresholds. A strategy below warningThreshold is stressed, below
// criticalThreshold it is considered structurally failing.
const (
	warningThreshold  = -10.0
	criticalThreshold = -50.0
)

// StatusFor is the single source of truth for the PnL -> Status mapping.
// The stored Status field on a Strategy must always equal StatusFor(PnL)
// after aggregation; anything else is an invariant violation.
func StatusFor(pnl float64) Status {
	switch {
	case pnl < criticalThreshold:
		return Critical
	case pnl < warningThreshold:
		return Warning
	default:
		return Healthy
	}
}

// Strategy is one monitored fleet member.
//
// PnL is cumulative and only ever updated additively by ApplyTick.
// Volatility and BaseAllocation are assigned at creation and immutable.
// Multiplier is a fleet-global derisking factor written uniformly by the
// aggregator; it is stored per strategy so the next tick's mutation can read
// it without reaching back into the aggregator.
type Strategy struct {
	ID             int
	PnL            float64
	Volatility     float64
	Status         Status
	Multiplier     float64
	BaseAllocation float64
}

// Fleet owns the full set of strategy records. Records are mutated only
// inside the tick pipeline (ApplyTick, then the aggregator); no other
// component may write them concurrently.
type Fleet struct {
	strategies []*Strategy
	degrading  map[int]bool
	drift      float64
}

// NewFleet creates cfg.Size strategies with zero PnL, HEALTHY status and a
// multiplier of 1.0. Volatility is sampled independently per strategy from
// [cfg.VolatilityMin, cfg.VolatilityMax] using the injected random source.
func NewFleet(cfg *config.FleetConfig, rng *rand.Rand) (*Fleet, error) {
	if cfg == nil || cfg.Size <= 0 {
		return nil, fmt.Errorf("fleet size must be positive")
	}
	if cfg.BaseAllocation <= 0 {
		return nil, fmt.Errorf("fleet base allocation must be positive")
	}
	if cfg.VolatilityMin <= 0 || cfg.VolatilityMax < cfg.VolatilityMin {
		return nil, fmt.Errorf("fleet volatility range [%.4f, %.4f] is invalid", cfg.VolatilityMin, cfg.VolatilityMax)
	}

	degrading := make(map[int]bool, len(cfg.DegradingStrategyIDs))
	for _, id := range cfg.DegradingStrategyIDs {
		if id <= 0 || id > cfg.Size {
			return nil, fmt.Errorf("degrading strategy id %d is not a member of a fleet of size %d", id, cfg.Size)
		}
		degrading[id] = true
	}

	strategies := make([]*Strategy, 0, cfg.Size)
	span := cfg.VolatilityMax - cfg.VolatilityMin
	for i := 1; i <= cfg.Size; i++ {
		strategies = append(strategies, &Strategy{
			ID:             i,
			PnL:            0,
			Volatility:     cfg.VolatilityMin + rng.Float64()*span,
			Status:         Healthy,
			Multiplier:     1.0,
			BaseAllocation: cfg.BaseAllocation,
		})
	}

	return &Fleet{
		strategies: strategies,
		degrading:  degrading,
		drift:      cfg.DegradationDrift,
	}, nil
}

// Strategies exposes the underlying records for the aggregator and for
// observability snapshots. Callers outside the tick pipeline must treat the
// result as read-only.
func (f *Fleet) Strategies() []*Strategy {
	return f.strategies
}

// Size returns the number of fleet members.
func (f *Fleet) Size() int {
	return len(f.strategies)
}

// IsDegrading reports whether the given strategy ID belongs to the fixed
// structurally-degrading subset.
func (f *Fleet) IsDegrading(id int) bool {
	return f.degrading[id]
}

// ApplyTick draws one stochastic PnL delta per strategy, shaped by
// volatility * baseAllocation * multiplier, and applies it additively.
// Members of the degrading subset additionally receive a strictly negative
// perturbation every tick, modeling persistent structural underperformance.
func (f *Fleet) ApplyTick(rng *rand.Rand) {
	for _, s := range f.strategies {
		// Symmetric draw in [-1, 1); the multiplier written by the previous
		// tick's aggregation is read here, never re-derived.
		delta := (rng.Float64()*2 - 1) * s.Volatility * s.BaseAllocation * s.Multiplier
		if f.degrading[s.ID] {
			delta -= f.drift
		}
		s.PnL += delta
	}
}
