package models

import "sync/atomic"

// Per-MTok prices for the default vision model (gpt-4o-mini).
const (
	DefaultInputPricePerMTok  = 0.15
	DefaultOutputPricePerMTok = 0.60
)

// CostLedger accumulates inference usage for one process lifetime.
// Counters only grow; adds are atomic so metering never needs a lock.
type CostLedger struct {
	promptTokens     atomic.Int64
	completionTokens atomic.Int64
	callCount        atomic.Int64

	// prices are fixed at construction
	inputPricePerMTok  float64
	outputPricePerMTok float64
}

// NewCostLedger creates a ledger with the given per-million-token prices.
func NewCostLedger(inputPerMTok, outputPerMTok float64) *CostLedger {
	return &CostLedger{
		inputPricePerMTok:  inputPerMTok,
		outputPricePerMTok: outputPerMTok,
	}
}

// NewDefaultCostLedger creates a ledger priced for the default model.
func NewDefaultCostLedger() *CostLedger {
	return NewCostLedger(DefaultInputPricePerMTok, DefaultOutputPricePerMTok)
}

// Add records the usage of one completed inference call.
func (l *CostLedger) Add(promptTokens, completionTokens int64) {
	l.promptTokens.Add(promptTokens)
	l.completionTokens.Add(completionTokens)
	l.callCount.Add(1)
}

// PromptTokens returns the accumulated prompt token count.
func (l *CostLedger) PromptTokens() int64 { return l.promptTokens.Load() }

// CompletionTokens returns the accumulated completion token count.
func (l *CostLedger) CompletionTokens() int64 { return l.completionTokens.Load() }

// CallCount returns the number of metered calls.
func (l *CostLedger) CallCount() int64 { return l.callCount.Load() }

// EstimatedCost returns the running dollar estimate.
func (l *CostLedger) EstimatedCost() float64 {
	in := float64(l.promptTokens.Load()) / 1_000_000 * l.inputPricePerMTok
	out := float64(l.completionTokens.Load()) / 1_000_000 * l.outputPricePerMTok
	return in + out
}

// AveragePerRecord returns the estimated cost per collected record.
// Zero records yields zero rather than dividing.
func (l *CostLedger) AveragePerRecord(records int) float64 {
	if records <= 0 {
		return 0
	}
	return l.EstimatedCost() / float64(records)
}
