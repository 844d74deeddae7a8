// monitor/monitor.go
package monitor

import (
	"sync"
	"time"

	"fleet-oracle/logs"
	"fleet-oracle/utils"

	"github.com/google/uuid"
)

// Snapshot is the read-only per-tick view exposed for external reporting.
// It mirrors the decision inputs but is never part of the decision state.
type Snapshot struct {
	RunID         string    `json:"run_id"`
	Tick          int64     `json:"tick"`
	TotalPnL      float64   `json:"total_pnl"`
	CriticalCount int       `json:"critical_count"`
	Multiplier    float64   `json:"multiplier"`
	FailoverState string    `json:"failover_state"`
	At            time.Time `json:"at"`
}

// Store defines what the tick pipeline needs from the run-state holder.
// This interface-oriented design decouples the pipeline from the concrete
// in-memory implementation, which keeps tests simple.
type Store interface {
	// Record appends a snapshot and makes it the latest.
	Record(snap Snapshot)
	// Latest returns the most recent snapshot, if any tick has run yet.
	Latest() (Snapshot, bool)
	// History returns a copy of the retained snapshot window, oldest first.
	History() []Snapshot
}

// RunState is the in-memory implementation of Store. The process keeps no
// state across restarts, so a bounded window in memory is the whole record
// of the run.
type RunState struct {
	mu         sync.RWMutex
	runID      string
	latest     Snapshot
	hasLatest  bool
	history    []Snapshot
	maxHistory int
}

var _ Store = (*RunState)(nil)

// NewRunState creates a run-state holder retaining at most maxHistory
// snapshots and a fresh process-wide run ID.
func NewRunState(maxHistory int) *RunState {
	if maxHistory <= 0 {
		maxHistory = 1
	}
	return &RunState{
		runID:      uuid.NewString(),
		history:    make([]Snapshot, 0, maxHistory),
		maxHistory: maxHistory,
	}
}

// RunID returns the identifier stamped onto every snapshot of this process.
func (r *RunState) RunID() string {
	return r.runID
}

func (r *RunState) Record(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = snap
	r.hasLatest = true
	r.history = append(r.history, snap)
	if len(r.history) > r.maxHistory {
		// Drop the oldest entries; the window is bounded by construction.
		r.history = r.history[len(r.history)-r.maxHistory:]
	}
}

func (r *RunState) Latest() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.hasLatest
}

func (r *RunState) History() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Snapshot, len(r.history))
	copy(out, r.history)
	return out
}

// Reporter publishes tick snapshots to the run-state store and to the log.
// Every snapshot is logged at debug level; a heartbeat line is emitted every
// heartbeatEvery ticks so a quiet fleet still shows signs of life.
type Reporter struct {
	store          Store
	runID          string
	heartbeatEvery int64
}

// NewReporter wires a reporter to its store.
func NewReporter(runState *RunState, heartbeatEvery int64) *Reporter {
	if heartbeatEvery <= 0 {
		heartbeatEvery = 1
	}
	return &Reporter{
		store:          runState,
		runID:          runState.RunID(),
		heartbeatEvery: heartbeatEvery,
	}
}

// Publish stamps, records and logs one tick's snapshot.
func (m *Reporter) Publish(snap Snapshot) {
	snap.RunID = m.runID
	if snap.At.IsZero() {
		snap.At = time.Now()
	}
	m.store.Record(snap)

	logs.Debugf("[Monitor] tick=%d totalPnL=%.4f critical=%d multiplier=%.2f state=%s",
		snap.Tick, snap.TotalPnL, snap.CriticalCount, snap.Multiplier, snap.FailoverState)

	if snap.Tick%m.heartbeatEvery == 0 {
		logs.Infof("[Heartbeat] tick=%d totalPnL=%.2f critical=%d multiplier=%.2f state=%s",
			snap.Tick, utils.RoundToPrecision(snap.TotalPnL, 2), snap.CriticalCount, snap.Multiplier, snap.FailoverState)
	}
}
