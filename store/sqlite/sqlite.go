/*
Package sqlite provides the SQLite-backed storage collaborator.

PURPOSE:
  Implements billing.Store and report.Store using SQLite. In production,
  the same patterns apply to MySQL/PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  users:    operators who record invoices and payouts
  agents:   sub-sellers (caller-supplied integer ids, unique phones)
  invoices: sales attributed to agents, cadence-tagged at creation
  payouts:  recorded bonus payments per (agent, period, installment)

UNIQUENESS:
  idx_payouts_agent_period enforces at most one payout per
  (agent, period year-month, installment). The eligibility gate checks
  first; the index closes the concurrent check-then-insert window, and
  CreatePayout maps the violation to billing.ErrDuplicatePayout.

DECIMAL SAFETY:
  Monetary columns are stored as decimal strings. Sums are accumulated
  in Go with shopspring/decimal rather than SQL SUM(), which would
  coerce through binary floats.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WAL mode keeps readers from
  blocking the single writer.

USAGE:
  store, err := sqlite.New("./data/hstore.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := billing.NewEngine(store)

SEE ALSO:
  - billing/store.go: the engine-facing interface
  - report/service.go: the summary-facing interface
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/josemartunga-sudo/hstore/billing"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Operators
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'normal',
		password_hash TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- Sub-sellers. Ids are caller-supplied, so no AUTOINCREMENT.
	CREATE TABLE IF NOT EXISTS agents (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL UNIQUE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		state TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_agents_name ON agents(name);

	-- Sales. The frequency tag is the agent's cadence at invoicing time
	-- and is only rewritten by the bulk cadence switch.
	CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		amount TEXT NOT NULL,
		invoiced_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT 'pending',
		channel TEXT NOT NULL,
		frequency TEXT NOT NULL DEFAULT 'monthly',
		agent_id INTEGER NOT NULL REFERENCES agents(id),
		user_id INTEGER NOT NULL REFERENCES users(id)
	);

	-- Aggregation hot path: (agent, date) scans per period/window
	CREATE INDEX IF NOT EXISTS idx_invoices_agent_date
		ON invoices(agent_id, invoiced_at);
	CREATE INDEX IF NOT EXISTS idx_invoices_date
		ON invoices(invoiced_at);
	CREATE INDEX IF NOT EXISTS idx_invoices_frequency
		ON invoices(frequency);

	-- Recorded bonus payments
	CREATE TABLE IF NOT EXISTS payouts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		paid_at TEXT NOT NULL,
		period_date TEXT NOT NULL,
		installment TEXT NOT NULL DEFAULT 'single',
		bonus TEXT NOT NULL,
		remainder TEXT NOT NULL DEFAULT '0',
		agent_id INTEGER NOT NULL REFERENCES agents(id),
		user_id INTEGER NOT NULL REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_payouts_period
		ON payouts(period_date);

	-- CRITICAL: at most one payout per (agent, period month, installment).
	-- The eligibility gate checks first; this closes the race window.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_payouts_agent_period
		ON payouts(agent_id, strftime('%Y-%m', period_date), installment);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

// SaveUser inserts or updates a user, returning its id.
func (s *Store) SaveUser(ctx context.Context, u billing.User) (billing.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID != 0 {
		query := `
			UPDATE users SET name = ?, phone = ?, email = ?, role = ?, password_hash = ?, active = ?
			WHERE id = ?
		`
		_, err := s.db.ExecContext(ctx, query,
			u.Name, u.Phone, u.Email, u.Role, u.PasswordHash, u.Active, u.ID)
		return u.ID, err
	}

	query := `
		INSERT INTO users (name, phone, email, role, password_hash, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query,
		u.Name, u.Phone, u.Email, u.Role, u.PasswordHash, u.Active)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return billing.UserID(id), err
}

// GetUser retrieves a user by id, or nil.
func (s *Store) GetUser(ctx context.Context, id billing.UserID) (*billing.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u billing.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, phone, email, role, password_hash, active FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.Role, &u.PasswordHash, &u.Active)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// =============================================================================
// AGENTS
// =============================================================================

// CreateAgent inserts an agent with its caller-supplied id. Phone and id
// collisions surface as billing sentinel errors.
func (s *Store) CreateAgent(ctx context.Context, a billing.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO agents (id, name, phone, user_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.Name, a.Phone, a.UserID, a.State, now, now)

	if err != nil {
		if isUniqueConstraintError(err) {
			if strings.Contains(err.Error(), "agents.phone") {
				return billing.ErrDuplicatePhone
			}
			return billing.ErrDuplicateAgentID
		}
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}

// FindAgent retrieves an agent by id, or nil.
func (s *Store) FindAgent(ctx context.Context, id billing.AgentID) (*billing.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return scanAgentRow(s.db.QueryRowContext(ctx,
		"SELECT id, name, phone, user_id, state, created_at, updated_at FROM agents WHERE id = ?",
		id,
	))
}

// FindAgentByPhone retrieves an agent by phone, or nil.
func (s *Store) FindAgentByPhone(ctx context.Context, phone string) (*billing.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return scanAgentRow(s.db.QueryRowContext(ctx,
		"SELECT id, name, phone, user_id, state, created_at, updated_at FROM agents WHERE phone = ?",
		phone,
	))
}

func scanAgentRow(row *sql.Row) (*billing.Agent, error) {
	var a billing.Agent
	var createdAt, updatedAt string

	err := row.Scan(&a.ID, &a.Name, &a.Phone, &a.UserID, &a.State, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &a, nil
}

// ListAgents returns agents ordered by name, optionally active only.
func (s *Store) ListAgents(ctx context.Context, activeOnly bool) ([]billing.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, name, phone, user_id, state, created_at, updated_at FROM agents"
	var args []any
	if activeOnly {
		query += " WHERE state = ?"
		args = append(args, billing.AgentActive)
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []billing.Agent
	for rows.Next() {
		var a billing.Agent
		var createdAt, updatedAt string
		if err := rows.Scan(&a.ID, &a.Name, &a.Phone, &a.UserID, &a.State, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// UpdateAgent changes an agent's name and phone. Returns false when the
// agent does not exist.
func (s *Store) UpdateAgent(ctx context.Context, id billing.AgentID, name, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE agents SET name = ?, phone = ?, updated_at = ? WHERE id = ?",
		name, phone, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		if isUniqueConstraintError(err) {
			return false, billing.ErrDuplicatePhone
		}
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetAgentState flips an agent between active and suspended.
func (s *Store) SetAgentState(ctx context.Context, id billing.AgentID, state billing.AgentState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE agents SET state = ?, updated_at = ? WHERE id = ?",
		state, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteAgent removes an agent. Invoices and payouts are NOT cascaded;
// referential policy is left to the schema's foreign keys.
func (s *Store) DeleteAgent(ctx context.Context, id billing.AgentID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM agents WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CountAgents counts all agents.
func (s *Store) CountAgents(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM agents").Scan(&count)
	return count, err
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// parseDecimal parses a stored amount column. An unparsable value is a
// corrupted row and surfaces as an error rather than a silent zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("stored amount %q: %w", s, err)
	}
	return d, nil
}

// monthClause builds the (year, month) predicate for a date column.
func monthClause(column string, period billing.YearMonth) (string, any) {
	return "strftime('%Y-%m', " + column + ") = ?", period.String()
}

// windowClause bounds day-of-month for a date column.
func windowClause(column string, w billing.DayWindow) (string, []any) {
	return "CAST(strftime('%d', " + column + ") AS INTEGER) BETWEEN ? AND ?",
		[]any{w.FromDay, w.ToDay}
}
