package models

import (
	"context"
	"time"
)

// RunContext carries the per-run cost ledger together with the deadline
// context. It is passed explicitly into every component; nothing in the
// pipeline reads ambient globals.
type RunContext struct {
	Ctx    context.Context
	Ledger *CostLedger
	cancel context.CancelFunc
}

// NewRunContext derives a run context with the shared wall-clock budget.
// A zero timeout means no deadline.
func NewRunContext(parent context.Context, ledger *CostLedger, timeout time.Duration) *RunContext {
	if ledger == nil {
		ledger = NewDefaultCostLedger()
	}
	ctx := parent
	var cancel context.CancelFunc = func() {}
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	}
	return &RunContext{Ctx: ctx, Ledger: ledger, cancel: cancel}
}

// Close releases the deadline timer.
func (rc *RunContext) Close() {
	rc.cancel()
}

// Expired reports whether the shared budget has run out.
func (rc *RunContext) Expired() bool {
	select {
	case <-rc.Ctx.Done():
		return true
	default:
		return false
	}
}

// Remaining returns the time left in the budget, or zero when no deadline
// is set.
func (rc *RunContext) Remaining() time.Duration {
	deadline, ok := rc.Ctx.Deadline()
	if !ok {
		return 0
	}
	rem := time.Until(deadline)
	if rem < 0 {
		return 0
	}
	return rem
}
