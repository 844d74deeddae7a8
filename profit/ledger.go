// profit/ledger.go
package profit

import (
	"math"
	"sync"
)

// Summary is the read-only rollup reported on shutdown.
type Summary struct {
	Ticks        int64
	FinalTotal   float64
	PeakTotal    float64
	MaxDrawdown  float64
	WorstTotal   float64
	PeakCritical int
}

// Ledger tracks the per-tick aggregate history of the monitoring run: peak
// equity, worst point and maximum drawdown. It is reporting-only state and
// never feeds back into the decision core.
type Ledger struct {
	mu           sync.Mutex
	ticks        int64
	lastTotal    float64
	peakTotal    float64
	worstTotal   float64
	maxDrawdown  float64
	peakCritical int
}

// NewLedger creates an empty accounting ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// RecordTick folds one tick's aggregate into the running statistics.
func (l *Ledger) RecordTick(agg Aggregate) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ticks++
	l.lastTotal = agg.TotalPnL
	if agg.TotalPnL > l.peakTotal {
		l.peakTotal = agg.TotalPnL
	}
	if agg.TotalPnL < l.worstTotal {
		l.worstTotal = agg.TotalPnL
	}
	if dd := l.peakTotal - agg.TotalPnL; dd > l.maxDrawdown {
		l.maxDrawdown = dd
	}
	if agg.CriticalCount > l.peakCritical {
		l.peakCritical = agg.CriticalCount
	}
}

// TickCount returns the number of ticks recorded so far.
func (l *Ledger) TickCount() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

// Summary returns a copy of the current rollup.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Summary{
		Ticks:        l.ticks,
		FinalTotal:   l.lastTotal,
		PeakTotal:    l.peakTotal,
		MaxDrawdown:  l.maxDrawdown,
		WorstTotal:   math.Min(l.worstTotal, l.lastTotal),
		PeakCritical: l.peakCritical,
	}
}
