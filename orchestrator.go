// orchestrator.go
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"fleet-oracle/config"
	"fleet-oracle/logs"
	"fleet-oracle/monitor"
	"fleet-oracle/profit"
	"fleet-oracle/risk"
	"fleet-oracle/scheduler"
	"fleet-oracle/strategy"
	"fleet-oracle/submitter"
)

// Orchestrator wires the full tick pipeline: fleet mutation, aggregation,
// failover evaluation and observability. It is the explicit context object
// the pipeline runs through; there is no global mutable state.
type Orchestrator struct {
	cfg        *config.Config
	client     submitter.Client
	fleet      *strategy.Fleet
	aggregator *profit.Aggregator
	ledger     *profit.Ledger
	controller *risk.Controller
	runState   *monitor.RunState
	reporter   *monitor.Reporter
	sched      *scheduler.Scheduler
	rng        *rand.Rand
}

// NewOrchestrator validates the wiring and builds every component. A failure
// here is fatal at startup: the scheduler never starts on a bad config.
func NewOrchestrator(cfg *config.Config, envCfg *config.EnvConfig) (*Orchestrator, error) {
	var client submitter.Client
	if cfg.UseSimulation {
		client = submitter.NewMockClient()
		logs.Warnf("<<<<<<<<<< WARNING: Running in simulation mode, failover commits go to a mock submitter >>>>>>>>>>")
	} else {
		if envCfg.SubmitURL == "" {
			return nil, fmt.Errorf("ORACLE_SUBMIT_URL must be set when use_simulation is false")
		}
		client = submitter.NewAPIClient(envCfg.SubmitURL, envCfg.SubmitToken, cfg.Normal.SubmitTimeoutSeconds)
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	logs.Infof("Random source seeded with %d.", seed)

	fleet, err := strategy.NewFleet(cfg.Fleet, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create strategy fleet: %w", err)
	}

	runState := monitor.NewRunState(cfg.Normal.SnapshotHistorySize)
	logs.Infof("Monitoring run %s started: fleet size %d, critical loss threshold %.2f.",
		runState.RunID(), fleet.Size(), cfg.Failover.CriticalLossThreshold)

	o := &Orchestrator{
		cfg:        cfg,
		client:     client,
		fleet:      fleet,
		aggregator: profit.NewAggregator(cfg.Failover),
		ledger:     profit.NewLedger(),
		controller: risk.NewController(cfg.Failover, client),
		runState:   runState,
		reporter:   monitor.NewReporter(runState, cfg.Normal.HeartbeatIntervalTicks),
		rng:        rng,
	}
	o.sched = scheduler.New(time.Duration(cfg.Normal.TickIntervalMs)*time.Millisecond, o.runTick)

	return o, nil
}

// runTick executes one full pipeline pass. Returning false tells the
// scheduler to halt before the next cadence fires.
func (o *Orchestrator) runTick(tick int64) bool {
	o.fleet.ApplyTick(o.rng)

	agg, err := o.aggregator.Evaluate(o.fleet)
	if err != nil {
		var inv *profit.InvariantError
		if errors.As(err, &inv) {
			// A broken invariant means a bug, not market conditions. Stop the
			// loop rather than risk a decision on corrupted state.
			logs.Errorf("[Orchestrator-Fatal] %v. Halting the monitoring loop.", inv)
			return false
		}
		// A degraded tick aborts only this tick's failover evaluation; the
		// fleet mutation already applied is not rolled back.
		logs.Errorf("[Orchestrator] Aggregation failed, skipping failover evaluation for tick %d: %v", tick, err)
		return true
	}
	o.ledger.RecordTick(agg)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(o.cfg.Normal.SubmitTimeoutSeconds)*time.Second)
	st, err := o.controller.Evaluate(ctx, agg.TotalPnL)
	cancel()
	if err != nil {
		var commitErr *risk.CommitError
		if errors.As(err, &commitErr) {
			logs.Errorf("[Orchestrator] %v. Controller stays ARMED, will retry on the next tick.", commitErr)
		} else {
			logs.Errorf("[Orchestrator] Failover evaluation failed: %v", err)
		}
	}

	o.reporter.Publish(monitor.Snapshot{
		Tick:          tick,
		TotalPnL:      agg.TotalPnL,
		CriticalCount: agg.CriticalCount,
		Multiplier:    agg.Multiplier,
		FailoverState: string(st),
	})

	if st == risk.Triggered {
		logs.Warnf("[Orchestrator] Failover committed on tick %d, halting the monitoring loop.", tick)
		return false
	}
	return true
}

// Start launches the scheduler.
func (o *Orchestrator) Start() error {
	if err := o.sched.Start(); err != nil {
		return err
	}
	logs.Infof("Oracle started, ticking every %dms. Press Ctrl+C to exit.", o.cfg.Normal.TickIntervalMs)
	return nil
}

// Done is closed once the tick loop has exited (trigger or invariant halt).
func (o *Orchestrator) Done() <-chan struct{} {
	return o.sched.Done()
}

// Stop halts the scheduler and prints the final run summary.
func (o *Orchestrator) Stop() {
	logs.Info("Received close signal, starting graceful shutdown...")
	o.sched.Stop()
	o.printFinalSummary()
	logs.Info("All services stopped successfully.")
}

func (o *Orchestrator) printFinalSummary() {
	summary := o.ledger.Summary()
	logs.Info("--- Final Run Summary ---")
	logs.Infof("Run ID:            %s", o.runState.RunID())
	logs.Infof("Ticks executed:    %d", summary.Ticks)
	logs.Infof("Final total PnL:   %.4f", summary.FinalTotal)
	logs.Infof("Peak total PnL:    %.4f", summary.PeakTotal)
	logs.Infof("Worst total PnL:   %.4f", summary.WorstTotal)
	logs.Infof("Max drawdown:      %.4f", summary.MaxDrawdown)
	logs.Infof("Peak critical cnt: %d", summary.PeakCritical)
	logs.Infof("Failover state:    %s", o.controller.State())
	if snap, ok := o.runState.Latest(); ok {
		logs.Infof("Last snapshot:     tick=%d totalPnL=%.4f critical=%d multiplier=%.2f",
			snap.Tick, snap.TotalPnL, snap.CriticalCount, snap.Multiplier)
	}
	logs.Info("-------------------------")
}
