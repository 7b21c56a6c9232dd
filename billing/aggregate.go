package billing

import (
	"context"
	"fmt"
)

// =============================================================================
// SALES AGGREGATION
// =============================================================================

// Aggregate sums and counts the agent's invoices for one installment of a
// period. Single covers the whole month; first and second cover their day
// windows. No matching invoices yields a zero summary, never an error.
func (e *Engine) Aggregate(ctx context.Context, agentID AgentID, period YearMonth, installment Installment) (SalesSummary, error) {
	window := WindowFor(installment)

	total, err := e.store.SumInvoiceAmount(ctx, agentID, period, window)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("aggregate sales for agent %d in %s: %w", agentID, period, err)
	}

	count, err := e.store.CountInvoices(ctx, agentID, period, window)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("count invoices for agent %d in %s: %w", agentID, period, err)
	}

	return SalesSummary{TotalAmount: total, InvoiceCount: count}, nil
}
