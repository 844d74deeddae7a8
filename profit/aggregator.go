// profit/aggregator.go
package profit

import (
	"fmt"

	"fleet-oracle/config"
	"fleet-oracle/strategy"
	"fleet-oracle/utils"
)

// Aggregate is the derived, ephemeral fleet-wide view produced once per tick.
// It is recomputed from scratch every tick and never persisted between ticks.
type Aggregate struct {
	TotalPnL      float64
	CriticalCount int
	// Multiplier is the fleet-global factor that will be in force for the
	// NEXT tick's mutation, exposed here for the observability snapshot.
	Multiplier float64
}

// InvariantError indicates that a strategy record is internally inconsistent
// (for example a non-finite PnL or a stored status that disagrees with the
// pure threshold function). It signals a bug and is fatal to the tick loop.
type InvariantError struct {
	StrategyID int
	Detail     string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("fleet invariant violated on strategy %d: %s", e.StrategyID, e.Detail)
}

// Aggregator reduces the fleet to an Aggregate each tick and applies the
// fleet-wide derisking policy. It owns no state beyond its thresholds.
type Aggregator struct {
	deriskThreshold  float64
	deriskMultiplier float64
}

// NewAggregator builds an aggregator from the failover configuration block.
func NewAggregator(cfg *config.FailoverConfig) *Aggregator {
	return &Aggregator{
		deriskThreshold:  cfg.DeriskThreshold,
		deriskMultiplier: cfg.DeriskMultiplier,
	}
}

// Evaluate recomputes every strategy's status from its current PnL,
// accumulates the fleet totals, then applies the global multiplier policy:
// below the derisk threshold every strategy's multiplier is set to the
// derisking value, otherwise every multiplier is reset to 1.0. The write is
// always a uniform full overwrite, never partial, and takes effect starting
// the next tick's mutation.
func (a *Aggregator) Evaluate(fleet *strategy.Fleet) (Aggregate, error) {
	var agg Aggregate

	for _, s := range fleet.Strategies() {
		if !utils.IsFinite(s.PnL) {
			return Aggregate{}, &InvariantError{StrategyID: s.ID, Detail: fmt.Sprintf("non-finite pnl %v", s.PnL)}
		}
		s.Status = strategy.StatusFor(s.PnL)
		agg.TotalPnL += s.PnL
		if s.Status == strategy.Critical {
			agg.CriticalCount++
		}
	}

	multiplier := 1.0
	if agg.TotalPnL < a.deriskThreshold {
		multiplier = a.deriskMultiplier
	}
	for _, s := range fleet.Strategies() {
		s.Multiplier = multiplier
	}
	agg.Multiplier = multiplier

	// Defensive readback: a stored status that no longer matches the pure
	// threshold function means something else wrote the records mid-tick.
	for _, s := range fleet.Strategies() {
		if s.Status != strategy.StatusFor(s.PnL) {
			return Aggregate{}, &InvariantError{
				StrategyID: s.ID,
				Detail:     fmt.Sprintf("status %s inconsistent with pnl %.4f", s.Status, s.PnL),
			}
		}
	}

	return agg, nil
}
