/*
eligibility.go - The payout eligibility gate

PURPOSE:
  Decides whether a payout may be recorded for (agent, period,
  installment). The gate is a small state machine:

    Open -> Blocked(reason) | Eligible -> Recorded

  Recording (recorder.go) moves Eligible to Recorded; there is no
  reversal through this engine.

RULE ORDER (first failing rule wins):
  1. Temporal:    the period must be closed. Single and second pay out
                  only from the month after the period's month. First may
                  additionally pay out from day 16 of its own month.
  2. Coverage:    the agent needs at least one invoice inside the
                  installment's day window for the period.
  3. Duplication: no payout may already exist for the exact
                  (agent, year, month, installment).

RACE NOTE:
  Rule 3 is a read-then-write check. Two concurrent requests can both see
  "no payout yet" before either inserts. The storage layer closes that
  window with a uniqueness index; CreatePayout surfaces the collision as
  ErrDuplicatePayout.
*/
package billing

import (
	"context"
	"fmt"
)

// GateState is where an (agent, period, installment) sits in the payout
// state machine.
type GateState string

const (
	GateOpen     GateState = "open"
	GateBlocked  GateState = "blocked"
	GateEligible GateState = "eligible"
	GateRecorded GateState = "recorded"
)

// BlockReason names why the gate refused. Surfaced verbatim to callers.
type BlockReason string

const (
	BlockPeriodOpen  BlockReason = "period still open"
	BlockNoInvoices  BlockReason = "agent has no invoices"
	BlockAlreadyPaid BlockReason = "already paid this period"
)

// GateDecision is the gate's verdict.
type GateDecision struct {
	State  GateState
	Reason BlockReason // set only when State == GateBlocked
}

func blockedDecision(reason BlockReason) GateDecision {
	return GateDecision{State: GateBlocked, Reason: reason}
}

// CheckEligibility runs the gate for one (agent, period, installment).
// The rules run in a fixed order and the first failing rule wins.
func (e *Engine) CheckEligibility(ctx context.Context, agentID AgentID, period YearMonth, installment Installment) (GateDecision, error) {
	// Rule 1: temporal gate.
	if !e.periodClosed(period, installment) {
		return blockedDecision(BlockPeriodOpen), nil
	}

	// Rule 2: coverage gate.
	count, err := e.store.CountInvoices(ctx, agentID, period, WindowFor(installment))
	if err != nil {
		return GateDecision{}, fmt.Errorf("coverage check for agent %d in %s: %w", agentID, period, err)
	}
	if count == 0 {
		return blockedDecision(BlockNoInvoices), nil
	}

	// Rule 3: duplication gate.
	existing, err := e.store.FindPayout(ctx, agentID, period, installment)
	if err != nil {
		return GateDecision{}, fmt.Errorf("duplication check for agent %d in %s: %w", agentID, period, err)
	}
	if existing != nil {
		return blockedDecision(BlockAlreadyPaid), nil
	}

	return GateDecision{State: GateEligible}, nil
}

// periodClosed applies the temporal rule. A period closes the month after
// it ends; the first installment additionally closes on day 16 of its own
// month, once its half is over.
func (e *Engine) periodClosed(period YearMonth, installment Installment) bool {
	now := e.now()
	current := YearMonthOf(now)

	if period.Before(current) {
		return true
	}

	// Same month or future. First may still pay once past day 15 of its
	// own month; single and second never may.
	if installment == InstallmentFirst && current == period {
		return now.Day() > 15
	}
	return false
}
