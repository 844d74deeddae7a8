// risk/controller.go
package risk

import (
	"context"
	"fmt"
	"sync"

	"fleet-oracle/config"
	"fleet-oracle/logs"
	"fleet-oracle/submitter"
)

// State is the failover state machine's position. There are exactly two
// states: Armed (initial) and Triggered (terminal, no transition back).
type State string

const (
	Armed     State = "ARMED"
	Triggered State = "TRIGGERED"
)

// CommitError wraps a failed submission to the external service. It is
// recoverable: the controller stays Armed and the next tick retries.
type CommitError struct {
	FailingID int
	BackupID  int
	Err       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failover commit (%d -> %d) failed: %v", e.FailingID, e.BackupID, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Controller is the one-shot failover trigger. Its single correctness
// contract is at-most-one submission for the lifetime of the process: once
// Triggered, Evaluate is a pure no-op forever after.
//
// The mutex is held across the commit call, so even if evaluations ever ran
// concurrently, no two of them could observe Armed and both submit. A commit
// still in flight blocks the decision; it is never treated as success.
type Controller struct {
	mu        sync.Mutex
	state     State
	threshold float64
	failingID int
	backupID  int
	client    submitter.Client
}

// NewController creates an Armed controller bound to the configured failing
// and backup identities and the external submission client.
func NewController(cfg *config.FailoverConfig, client submitter.Client) *Controller {
	return &Controller{
		state:     Armed,
		threshold: cfg.CriticalLossThreshold,
		failingID: cfg.FailingStrategyID,
		backupID:  cfg.BackupStrategyID,
		client:    client,
	}
}

// Evaluate inspects the aggregate PnL against the critical loss threshold.
//
//   - Already Triggered: no-op, returns Triggered with no side effects.
//   - Armed, totalPnL above the threshold: returns Armed, no side effects.
//   - Armed, totalPnL at or below the threshold (inclusive comparison):
//     submits the failover synchronously. Success transitions to Triggered;
//     failure returns a CommitError and the controller stays Armed so the
//     next tick can retry.
func (c *Controller) Evaluate(ctx context.Context, totalPnL float64) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Triggered {
		return Triggered, nil
	}
	if totalPnL > c.threshold {
		return Armed, nil
	}

	logs.Warnf("[Failover] Aggregate PnL %.4f breached critical threshold %.4f, committing failover %d -> %d...",
		totalPnL, c.threshold, c.failingID, c.backupID)

	conf, err := c.client.SubmitFailover(ctx, c.failingID, c.backupID)
	if err != nil {
		return Armed, &CommitError{FailingID: c.failingID, BackupID: c.backupID, Err: err}
	}

	c.state = Triggered
	logs.Warnf("[Failover] Commit accepted by submission service (reference: %s). Controller is now TRIGGERED.", conf.Reference)
	return Triggered, nil
}

// State returns the current state of the machine.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Triggered reports whether the one-shot transition has happened.
func (c *Controller) Triggered() bool {
	return c.State() == Triggered
}
