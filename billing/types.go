/*
Package billing provides the payout computation engine.

PURPOSE:
  This package contains the domain logic for turning an agent's invoiced
  sales into bonus payouts. It resolves which installment of a month a
  payout covers, aggregates invoice totals for that window, converts the
  total into a tiered bonus, and gates payout creation behind eligibility
  checks (period closed, has invoices, not already paid).

KEY CONCEPTS IN THIS FILE (types.go):
  - Agent/Invoice/Payout/User: the persisted entities (integer-keyed rows)
  - Installment: which slice of a month a payout covers (single/first/second)
  - Frequency: an agent's invoicing cadence (monthly/biweekly)
  - BonusBreakdown: the output of the tier computation

DESIGN PRINCIPLES:
  1. Precision: all monetary values use decimal.Decimal, never float64
  2. Explicit DI: every component receives its Store, no package state
  3. Tagged results: business outcomes are Ok/Blocked/Failed, not errors
  4. Historical accuracy: an invoice's frequency tag is fixed at creation
     and only the bulk cadence switch may rewrite it (current month only)

SEE ALSO:
  - period.go: installment resolution and day windows
  - bonus.go: the pure tier computation
  - eligibility.go: the payout eligibility gate
  - recorder.go: payout recording
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// AgentID is caller-supplied at registration, not auto-generated.
type AgentID int64

type (
	InvoiceID int64
	PayoutID  int64
	UserID    int64
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

// Installment identifies which slice of a month a payout covers.
type Installment string

const (
	// InstallmentSingle covers the whole month (monthly cadence).
	InstallmentSingle Installment = "single"

	// InstallmentFirst covers days 1-15 (biweekly cadence).
	InstallmentFirst Installment = "first"

	// InstallmentSecond covers day 16 through the end of the month.
	// Never inferred by the resolver; only reachable when explicitly
	// requested by the caller.
	InstallmentSecond Installment = "second"
)

// Valid reports whether i is one of the three known installments.
func (i Installment) Valid() bool {
	switch i {
	case InstallmentSingle, InstallmentFirst, InstallmentSecond:
		return true
	}
	return false
}

// Frequency is an agent's invoicing cadence. Each invoice carries the
// cadence the agent had at the moment of invoicing.
type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencyBiweekly Frequency = "biweekly"
)

// AgentState is the agent lifecycle.
type AgentState string

const (
	AgentActive    AgentState = "active"
	AgentSuspended AgentState = "suspended"
)

// InvoiceState is the invoice lifecycle.
type InvoiceState string

const (
	InvoicePending InvoiceState = "pending"
	InvoicePaid    InvoiceState = "paid"
)

// Channel is how the sale was transacted.
type Channel string

const (
	ChannelPhysical   Channel = "physical"
	ChannelElectronic Channel = "electronic"
)

// UserRole is the recording user's role.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleNormal UserRole = "normal"
)

// =============================================================================
// ENTITIES
// =============================================================================

// Agent is a sub-seller whose sales are tracked for bonus payouts.
// Phone and ID are each globally unique.
type Agent struct {
	ID        AgentID
	Name      string
	Phone     string
	UserID    UserID // owning user who registered the agent
	State     AgentState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Invoice is a recorded sale attributed to an agent on a given date.
type Invoice struct {
	ID         InvoiceID
	Amount     decimal.Decimal
	InvoicedAt time.Time
	UpdatedAt  time.Time
	State      InvoiceState
	Channel    Channel
	Frequency  Frequency // cadence at creation time, never retagged at query time
	AgentID    AgentID
	UserID     UserID // recording user
}

// Payout is a recorded bonus payment to an agent for a closed
// period/installment. At most one exists per (agent, period year+month,
// installment).
type Payout struct {
	ID          PayoutID
	PaidAt      time.Time // creation time
	PeriodDate  time.Time // the date the payout corresponds to
	Installment Installment
	Bonus       decimal.Decimal
	Remainder   decimal.Decimal
	AgentID     AgentID
	UserID      UserID // recording user
}

// User is an operator of the system. Kept here because invoices and
// payouts reference the recording user; authentication is out of scope.
type User struct {
	ID           UserID
	Name         string
	Phone        string
	Email        string
	Role         UserRole
	PasswordHash string
	Active       bool
}

// =============================================================================
// COMPUTED VALUES
// =============================================================================

// SalesSummary is the aggregation of an agent's invoices in a window.
type SalesSummary struct {
	TotalAmount  decimal.Decimal
	InvoiceCount int
}

// BonusBreakdown is the output of the tier computation.
// TierCount may be fractional: a single half-tier of 12,500 yields 0.5.
type BonusBreakdown struct {
	Bonus     decimal.Decimal
	Remainder decimal.Decimal
	TierCount decimal.Decimal
}

// PaymentReport is the read-only report for one agent/period/installment.
type PaymentReport struct {
	Agent       Agent
	Period      YearMonth
	Installment Installment
	SalesSummary
	BonusBreakdown
}

// PayoutConfirmation is returned after a payout is recorded.
type PayoutConfirmation struct {
	Payout  Payout
	Message string
}
