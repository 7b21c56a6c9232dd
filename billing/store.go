/*
store.go - Persistence interface for the billing engine

PURPOSE:
  Defines the interface between the payout logic and the database. The
  engine never touches SQL; all cross-entity lookups go through this
  collaborator by integer id. Different implementations can use SQLite,
  MySQL, or an in-memory table set.

QUERY SHAPE:
  Invoice queries are keyed by (agent, year+month) with an optional day
  window for the half-month installments. A nil window means the whole
  month. Absence of matching rows yields zero values, never an error.

SEE ALSO:
  - store/sqlite/sqlite.go: concrete implementation
  - aggregate.go, eligibility.go: the hot-path callers
*/
package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the persistence collaborator the engine depends on.
type Store interface {
	// FindAgent returns the agent or nil if none exists.
	FindAgent(ctx context.Context, id AgentID) (*Agent, error)

	// FirstInvoiceOfMonth returns any one invoice of the agent in the
	// period, or nil. Used to read the cadence the agent invoiced under.
	FirstInvoiceOfMonth(ctx context.Context, agentID AgentID, period YearMonth) (*Invoice, error)

	// ListInvoices returns the agent's invoices in the period, restricted
	// to the day window when one is given.
	ListInvoices(ctx context.Context, agentID AgentID, period YearMonth, window *DayWindow) ([]Invoice, error)

	// CountInvoices counts the agent's invoices in the period/window.
	CountInvoices(ctx context.Context, agentID AgentID, period YearMonth, window *DayWindow) (int, error)

	// SumInvoiceAmount sums invoice amounts in the period/window.
	// Returns zero when no rows match.
	SumInvoiceAmount(ctx context.Context, agentID AgentID, period YearMonth, window *DayWindow) (decimal.Decimal, error)

	// FindPayout returns the payout for (agent, period, installment), or nil.
	FindPayout(ctx context.Context, agentID AgentID, period YearMonth, installment Installment) (*Payout, error)

	// CreatePayout persists one payout row and returns it with its
	// generated id. Returns ErrDuplicatePayout when a row for the same
	// (agent, period, installment) already exists.
	CreatePayout(ctx context.Context, p Payout) (*Payout, error)

	// UpdateInvoiceFrequency retags all of the agent's invoices in the
	// period with the new cadence, returning how many rows changed.
	UpdateInvoiceFrequency(ctx context.Context, agentID AgentID, period YearMonth, freq Frequency) (int64, error)
}
