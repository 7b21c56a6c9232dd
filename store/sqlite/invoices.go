package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josemartunga-sudo/hstore/billing"
	"github.com/josemartunga-sudo/hstore/report"
)

// =============================================================================
// INVOICE WRITES
// =============================================================================

// CreateInvoice inserts one invoice row and returns it with its
// generated id. A zero InvoicedAt defaults to now.
func (s *Store) CreateInvoice(ctx context.Context, inv billing.Invoice) (*billing.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertInvoice(ctx, s.db, inv)
}

// CreateInvoices inserts a batch of invoice rows in one transaction. A
// mixed sale records every channel or nothing.
func (s *Store) CreateInvoices(ctx context.Context, invs []billing.Invoice) ([]billing.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	created := make([]billing.Invoice, 0, len(invs))
	for _, inv := range invs {
		out, err := insertInvoice(ctx, tx, inv)
		if err != nil {
			return nil, err
		}
		created = append(created, *out)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertInvoice is the shared insert path for single and batched
// creates. Timestamps are normalized to UTC before storage so SQLite's
// date functions and the Go side agree on the period a row belongs to.
func insertInvoice(ctx context.Context, db execer, inv billing.Invoice) (*billing.Invoice, error) {
	if inv.InvoicedAt.IsZero() {
		inv.InvoicedAt = time.Now()
	}
	inv.InvoicedAt = inv.InvoicedAt.UTC()
	inv.UpdatedAt = time.Now().UTC()
	if inv.State == "" {
		inv.State = billing.InvoicePending
	}

	query := `
		INSERT INTO invoices (amount, invoiced_at, updated_at, state, channel, frequency, agent_id, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := db.ExecContext(ctx, query,
		inv.Amount.String(),
		inv.InvoicedAt.Format(time.RFC3339),
		inv.UpdatedAt.Format(time.RFC3339),
		inv.State, inv.Channel, inv.Frequency, inv.AgentID, inv.UserID,
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	inv.ID = billing.InvoiceID(id)
	return &inv, nil
}

// UpdateInvoice rewrites an invoice's mutable fields.
func (s *Store) UpdateInvoice(ctx context.Context, inv billing.Invoice) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE invoices
		SET amount = ?, invoiced_at = ?, updated_at = ?, channel = ?, frequency = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		inv.Amount.String(),
		inv.InvoicedAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		inv.Channel, inv.Frequency, inv.ID,
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ResolveInvoice transitions an invoice from pending to paid.
func (s *Store) ResolveInvoice(ctx context.Context, id billing.InvoiceID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE invoices SET state = ?, updated_at = ? WHERE id = ?",
		billing.InvoicePaid, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteInvoice removes an invoice.
func (s *Store) DeleteInvoice(ctx context.Context, id billing.InvoiceID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpdateInvoiceFrequency retags all of the agent's invoices in the
// period, returning the number of rows changed. The bulk cadence switch
// is the only caller.
func (s *Store) UpdateInvoiceFrequency(ctx context.Context, agentID billing.AgentID, period billing.YearMonth, freq billing.Frequency) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	month, monthArg := monthClause("invoiced_at", period)
	query := "UPDATE invoices SET frequency = ?, updated_at = ? WHERE agent_id = ? AND " + month

	res, err := s.db.ExecContext(ctx, query,
		freq, time.Now().UTC().Format(time.RFC3339), agentID, monthArg)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// =============================================================================
// INVOICE READS (billing.Store)
// =============================================================================

const invoiceColumns = "id, amount, invoiced_at, updated_at, state, channel, frequency, agent_id, user_id"

// GetInvoice retrieves an invoice by id, or nil.
func (s *Store) GetInvoice(ctx context.Context, id billing.InvoiceID) (*billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invs, err := s.queryInvoices(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, nil
	}
	return &invs[0], nil
}

// FirstInvoiceOfMonth returns any one invoice of the agent in the
// period, or nil. Used to read the agent's cadence for that month.
func (s *Store) FirstInvoiceOfMonth(ctx context.Context, agentID billing.AgentID, period billing.YearMonth) (*billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	month, monthArg := monthClause("invoiced_at", period)
	query := "SELECT " + invoiceColumns + " FROM invoices WHERE agent_id = ? AND " + month + " LIMIT 1"

	invs, err := s.queryInvoices(ctx, query, agentID, monthArg)
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, nil
	}
	return &invs[0], nil
}

// ListInvoices returns the agent's invoices in the period/window, newest
// first.
func (s *Store) ListInvoices(ctx context.Context, agentID billing.AgentID, period billing.YearMonth, window *billing.DayWindow) ([]billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := agentPeriodQuery("SELECT "+invoiceColumns+" FROM invoices", agentID, period, window)
	query += " ORDER BY invoiced_at DESC"

	return s.queryInvoices(ctx, query, args...)
}

// CountInvoices counts the agent's invoices in the period/window.
func (s *Store) CountInvoices(ctx context.Context, agentID billing.AgentID, period billing.YearMonth, window *billing.DayWindow) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := agentPeriodQuery("SELECT COUNT(*) FROM invoices", agentID, period, window)

	var count int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// SumInvoiceAmount sums the agent's invoice amounts in the
// period/window. Zero when nothing matches. Accumulated in Go to keep
// decimal precision.
func (s *Store) SumInvoiceAmount(ctx context.Context, agentID billing.AgentID, period billing.YearMonth, window *billing.DayWindow) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := agentPeriodQuery("SELECT amount FROM invoices", agentID, period, window)
	return s.sumAmounts(ctx, query, args...)
}

// ListInvoicesOn returns the company's invoices for one calendar day,
// newest first, optionally narrowed by cadence and capped by limit.
func (s *Store) ListInvoicesOn(ctx context.Context, date time.Time, freq *billing.Frequency, limit int) ([]billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + invoiceColumns + " FROM invoices WHERE strftime('%Y-%m-%d', invoiced_at) = ?"
	args := []any{date.Format("2006-01-02")}
	if freq != nil {
		query += " AND frequency = ?"
		args = append(args, *freq)
	}
	query += " ORDER BY invoiced_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryInvoices(ctx, query, args...)
}

// =============================================================================
// COMPANY-WIDE READS (report.Store)
// =============================================================================

// CountCompanyInvoices counts invoices across all agents for a query.
func (s *Store) CountCompanyInvoices(ctx context.Context, q report.CompanyInvoiceQuery) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := companyQuery("SELECT COUNT(*) FROM invoices", q)

	var count int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// SumCompanyInvoiceAmount sums invoice amounts across all agents.
func (s *Store) SumCompanyInvoiceAmount(ctx context.Context, q report.CompanyInvoiceQuery) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := companyQuery("SELECT amount FROM invoices", q)
	return s.sumAmounts(ctx, query, args...)
}

// InvoiceTalliesByAgent groups the period's invoices by agent and
// cadence tag, agent name ascending.
func (s *Store) InvoiceTalliesByAgent(ctx context.Context, period billing.YearMonth, freq *billing.Frequency) ([]report.AgentTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	month, monthArg := monthClause("invoiced_at", period)
	query := `
		SELECT i.agent_id, a.name, a.phone, i.frequency, COUNT(*)
		FROM invoices i
		JOIN agents a ON a.id = i.agent_id
		WHERE ` + month
	args := []any{monthArg}
	if freq != nil {
		query += " AND i.frequency = ?"
		args = append(args, *freq)
	}
	query += " GROUP BY i.agent_id, i.frequency ORDER BY a.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tallies []report.AgentTally
	for rows.Next() {
		var t report.AgentTally
		if err := rows.Scan(&t.AgentID, &t.AgentName, &t.AgentPhone, &t.Frequency, &t.InvoiceCount); err != nil {
			return nil, err
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

// =============================================================================
// QUERY PLUMBING
// =============================================================================

func agentPeriodQuery(selectClause string, agentID billing.AgentID, period billing.YearMonth, window *billing.DayWindow) (string, []any) {
	month, monthArg := monthClause("invoiced_at", period)
	query := selectClause + " WHERE agent_id = ? AND " + month
	args := []any{agentID, monthArg}

	if window != nil {
		clause, windowArgs := windowClause("invoiced_at", *window)
		query += " AND " + clause
		args = append(args, windowArgs...)
	}
	return query, args
}

func companyQuery(selectClause string, q report.CompanyInvoiceQuery) (string, []any) {
	month, monthArg := monthClause("invoiced_at", q.Period)
	query := selectClause + " WHERE " + month
	args := []any{monthArg}

	if q.Day != nil {
		query += " AND CAST(strftime('%d', invoiced_at) AS INTEGER) = ?"
		args = append(args, *q.Day)
	}
	if q.Window != nil {
		clause, windowArgs := windowClause("invoiced_at", *q.Window)
		query += " AND " + clause
		args = append(args, windowArgs...)
	}
	if q.Frequency != nil {
		query += " AND frequency = ?"
		args = append(args, *q.Frequency)
	}
	return query, args
}

// sumAmounts adds a single-column decimal result set client-side.
func (s *Store) sumAmounts(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

func (s *Store) queryInvoices(ctx context.Context, query string, args ...any) ([]billing.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []billing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(rows *sql.Rows) (billing.Invoice, error) {
	var (
		inv        billing.Invoice
		amount     string
		invoicedAt string
		updatedAt  string
	)

	err := rows.Scan(&inv.ID, &amount, &invoicedAt, &updatedAt,
		&inv.State, &inv.Channel, &inv.Frequency, &inv.AgentID, &inv.UserID)
	if err != nil {
		return inv, err
	}

	if inv.Amount, err = parseDecimal(amount); err != nil {
		return inv, err
	}
	inv.InvoicedAt, _ = time.Parse(time.RFC3339, invoicedAt)
	inv.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return inv, nil
}
