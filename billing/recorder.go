/*
recorder.go - Payment reports and payout recording

PURPOSE:
  The two operations the engine exposes to its HTTP caller:

  PaymentReport: read-only. Resolve the installment, aggregate the
  window, compute the bonus. No side effects, recomputed from storage on
  every call.

  RecordPayout: side-effecting. Re-runs the eligibility gate (a caller's
  "already checked" claim is never trusted), then aggregates, computes,
  and persists exactly one payout row. Failure paths write nothing.
*/
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PaymentReport builds the read-only payout report for an agent. When
// explicit is nil the installment is resolved from the agent's cadence.
func (e *Engine) PaymentReport(ctx context.Context, agentID AgentID, date time.Time, explicit *Installment) (Result[PaymentReport], error) {
	agent, err := e.store.FindAgent(ctx, agentID)
	if err != nil {
		return Fail[PaymentReport](err), err
	}
	if agent == nil {
		return Fail[PaymentReport](ErrAgentNotFound), nil
	}

	installment, err := e.ResolveInstallment(ctx, agentID, date, explicit)
	if err != nil {
		return Fail[PaymentReport](err), err
	}

	period := YearMonthOf(date)
	summary, err := e.Aggregate(ctx, agentID, period, installment)
	if err != nil {
		return Fail[PaymentReport](err), err
	}

	return Ok(PaymentReport{
		Agent:          *agent,
		Period:         period,
		Installment:    installment,
		SalesSummary:   summary,
		BonusBreakdown: ComputeBonus(summary.TotalAmount),
	}), nil
}

// RecordPayout validates eligibility and persists one payout row for the
// agent. On a Blocked outcome nothing is written. The row's corresponding
// period is the request date; PaidAt is the moment of recording.
func (e *Engine) RecordPayout(ctx context.Context, userID UserID, agentID AgentID, date time.Time, explicit *Installment) (Result[PayoutConfirmation], error) {
	agent, err := e.store.FindAgent(ctx, agentID)
	if err != nil {
		return Fail[PayoutConfirmation](err), err
	}
	if agent == nil {
		return Fail[PayoutConfirmation](ErrAgentNotFound), nil
	}

	installment, err := e.ResolveInstallment(ctx, agentID, date, explicit)
	if err != nil {
		return Fail[PayoutConfirmation](err), err
	}

	period := YearMonthOf(date)
	decision, err := e.CheckEligibility(ctx, agentID, period, installment)
	if err != nil {
		return Fail[PayoutConfirmation](err), err
	}
	if decision.State == GateBlocked {
		return Block[PayoutConfirmation](decision.Reason), nil
	}

	summary, err := e.Aggregate(ctx, agentID, period, installment)
	if err != nil {
		return Fail[PayoutConfirmation](err), err
	}
	breakdown := ComputeBonus(summary.TotalAmount)

	created, err := e.store.CreatePayout(ctx, Payout{
		PaidAt:      e.now(),
		PeriodDate:  date,
		Installment: installment,
		Bonus:       breakdown.Bonus,
		Remainder:   breakdown.Remainder,
		AgentID:     agentID,
		UserID:      userID,
	})
	if errors.Is(err, ErrDuplicatePayout) {
		// A concurrent request won the race past the gate; same outcome
		// as the duplication rule.
		return Block[PayoutConfirmation](BlockAlreadyPaid), nil
	}
	if err != nil {
		return Fail[PayoutConfirmation](err), err
	}

	return Ok(PayoutConfirmation{
		Payout:  *created,
		Message: fmt.Sprintf("payout for agent %s recorded", agent.Name),
	}), nil
}
