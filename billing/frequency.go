package billing

import (
	"context"
	"fmt"
)

// =============================================================================
// PAYMENT-FREQUENCY SWITCH
// =============================================================================

// FrequencySwitch is the outcome of a successful cadence change.
type FrequencySwitch struct {
	Agent   Agent
	Updated int64
	Message string
}

// Guard messages for the switch. Surfaced verbatim like gate reasons.
const (
	BlockNoInvoicesThisMonth BlockReason = "no invoices this month"
	BlockAlreadyBiweekly     BlockReason = "already biweekly"
)

// SwitchToFortnightly changes an agent's invoicing cadence from monthly
// to biweekly by retagging all of the agent's current-month invoices.
// Prior months are untouched, so historical installment resolution stays
// accurate. The switch is refused when the agent has no invoices this
// month, or when they are all biweekly already.
func (e *Engine) SwitchToFortnightly(ctx context.Context, agentID AgentID) (Result[FrequencySwitch], error) {
	agent, err := e.store.FindAgent(ctx, agentID)
	if err != nil {
		return Fail[FrequencySwitch](err), err
	}
	if agent == nil {
		return Fail[FrequencySwitch](ErrAgentNotFound), nil
	}

	period := YearMonthOf(e.now())
	invoices, err := e.store.ListInvoices(ctx, agentID, period, nil)
	if err != nil {
		return Fail[FrequencySwitch](err), err
	}

	if len(invoices) == 0 {
		return Block[FrequencySwitch](BlockNoInvoicesThisMonth), nil
	}

	allBiweekly := true
	for _, inv := range invoices {
		if inv.Frequency != FrequencyBiweekly {
			allBiweekly = false
			break
		}
	}
	if allBiweekly {
		return Block[FrequencySwitch](BlockAlreadyBiweekly), nil
	}

	updated, err := e.store.UpdateInvoiceFrequency(ctx, agentID, period, FrequencyBiweekly)
	if err != nil {
		return Fail[FrequencySwitch](err), err
	}

	return Ok(FrequencySwitch{
		Agent:   *agent,
		Updated: updated,
		Message: fmt.Sprintf("agent %s switched to biweekly invoicing", agent.Name),
	}), nil
}
