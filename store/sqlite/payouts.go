package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josemartunga-sudo/hstore/billing"
	"github.com/josemartunga-sudo/hstore/report"
)

// =============================================================================
// PAYOUT WRITES
// =============================================================================

// CreatePayout inserts one payout row. The unique index on
// (agent, period month, installment) turns a concurrent double-record
// into billing.ErrDuplicatePayout.
func (s *Store) CreatePayout(ctx context.Context, p billing.Payout) (*billing.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	// Normalize to UTC before storage so strftime-based period queries
	// and the unique index see the same month the Go side resolved.
	p.PaidAt = p.PaidAt.UTC()
	p.PeriodDate = p.PeriodDate.UTC()

	query := `
		INSERT INTO payouts (paid_at, period_date, installment, bonus, remainder, agent_id, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query,
		p.PaidAt.Format(time.RFC3339),
		p.PeriodDate.Format(time.RFC3339),
		p.Installment,
		p.Bonus.String(),
		p.Remainder.String(),
		p.AgentID, p.UserID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, billing.ErrDuplicatePayout
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	p.ID = billing.PayoutID(id)
	return &p, nil
}

// =============================================================================
// PAYOUT READS (billing.Store)
// =============================================================================

const payoutColumns = "id, paid_at, period_date, installment, bonus, remainder, agent_id, user_id"

// FindPayout returns the payout recorded for the agent in the period
// for the given installment, or nil.
func (s *Store) FindPayout(ctx context.Context, agentID billing.AgentID, period billing.YearMonth, installment billing.Installment) (*billing.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	month, monthArg := monthClause("period_date", period)
	query := "SELECT " + payoutColumns + " FROM payouts WHERE agent_id = ? AND " + month + " AND installment = ? LIMIT 1"

	payouts, err := s.queryPayouts(ctx, query, agentID, monthArg, installment)
	if err != nil {
		return nil, err
	}
	if len(payouts) == 0 {
		return nil, nil
	}
	return &payouts[0], nil
}

// =============================================================================
// PAYOUT AGGREGATES (report.Store)
// =============================================================================

// SumPayoutBonus totals the bonuses paid out in the period, optionally
// narrowed to a set of installments.
func (s *Store) SumPayoutBonus(ctx context.Context, period billing.YearMonth, installments []billing.Installment) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := payoutPeriodQuery("SELECT bonus FROM payouts", period, installments)
	return s.sumAmounts(ctx, query, args...)
}

// SumPayoutRemainder totals the untiered remainders in the period.
func (s *Store) SumPayoutRemainder(ctx context.Context, period billing.YearMonth, installments []billing.Installment) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := payoutPeriodQuery("SELECT remainder FROM payouts", period, installments)
	return s.sumAmounts(ctx, query, args...)
}

// CountPayouts counts payouts recorded in the period.
func (s *Store) CountPayouts(ctx context.Context, period billing.YearMonth, installments []billing.Installment) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := payoutPeriodQuery("SELECT COUNT(*) FROM payouts", period, installments)

	var count int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// ListPaidAgents returns the period's payouts joined with the receiving
// agent's name and phone, most recent first.
func (s *Store) ListPaidAgents(ctx context.Context, period billing.YearMonth, installments []billing.Installment) ([]report.PaidAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	month, monthArg := monthClause("p.period_date", period)
	query := `
		SELECT p.id, p.paid_at, p.period_date, p.installment, p.bonus, p.remainder, p.agent_id, p.user_id,
		       a.name, a.phone
		FROM payouts p
		JOIN agents a ON a.id = p.agent_id
		WHERE ` + month
	args := []any{monthArg}

	if clause, extra := installmentClause("p.installment", installments); clause != "" {
		query += " AND " + clause
		args = append(args, extra...)
	}
	query += " ORDER BY p.paid_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paid []report.PaidAgent
	for rows.Next() {
		var (
			pa         report.PaidAgent
			paidAt     string
			periodDate string
			bonus      string
			remainder  string
		)
		err := rows.Scan(&pa.Payout.ID, &paidAt, &periodDate, &pa.Payout.Installment,
			&bonus, &remainder, &pa.Payout.AgentID, &pa.Payout.UserID,
			&pa.AgentName, &pa.AgentPhone)
		if err != nil {
			return nil, err
		}
		pa.Payout.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
		pa.Payout.PeriodDate, _ = time.Parse(time.RFC3339, periodDate)
		if pa.Payout.Bonus, err = parseDecimal(bonus); err != nil {
			return nil, err
		}
		if pa.Payout.Remainder, err = parseDecimal(remainder); err != nil {
			return nil, err
		}
		paid = append(paid, pa)
	}
	return paid, rows.Err()
}

// =============================================================================
// QUERY PLUMBING
// =============================================================================

func payoutPeriodQuery(selectClause string, period billing.YearMonth, installments []billing.Installment) (string, []any) {
	month, monthArg := monthClause("period_date", period)
	query := selectClause + " WHERE " + month
	args := []any{monthArg}

	if clause, extra := installmentClause("installment", installments); clause != "" {
		query += " AND " + clause
		args = append(args, extra...)
	}
	return query, args
}

func installmentClause(column string, installments []billing.Installment) (string, []any) {
	if len(installments) == 0 {
		return "", nil
	}
	placeholders := make([]string, len(installments))
	args := make([]any, len(installments))
	for i, inst := range installments {
		placeholders[i] = "?"
		args[i] = inst
	}
	return column + " IN (" + strings.Join(placeholders, ", ") + ")", args
}

func (s *Store) queryPayouts(ctx context.Context, query string, args ...any) ([]billing.Payout, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []billing.Payout
	for rows.Next() {
		var (
			p          billing.Payout
			paidAt     string
			periodDate string
			bonus      string
			remainder  string
		)
		err := rows.Scan(&p.ID, &paidAt, &periodDate, &p.Installment,
			&bonus, &remainder, &p.AgentID, &p.UserID)
		if err != nil {
			return nil, err
		}
		p.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
		p.PeriodDate, _ = time.Parse(time.RFC3339, periodDate)
		if p.Bonus, err = parseDecimal(bonus); err != nil {
			return nil, err
		}
		if p.Remainder, err = parseDecimal(remainder); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}
