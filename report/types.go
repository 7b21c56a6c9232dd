/*
Package report builds company-wide and per-agent summaries.

PURPOSE:
  Read-only views over the same storage the billing engine writes to:
  how much the company sold on a day or in a month, how much bonus was
  paid out, who was paid and who still invoiced without a payout. Every
  summary recomputes from storage; nothing is cached across requests.

FILTERING:
  Callers narrow summaries with the Filter enum (all/monthly/biweekly)
  which maps to invoice cadence tags and payout installments. Filtering
  is explicit branch logic on enums, not string pattern matching.

SEE ALSO:
  - service.go: the summary builders
  - billing: the entity and period types reused here
*/
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/josemartunga-sudo/hstore/billing"
)

// =============================================================================
// FILTER - Enumerated cadence filter
// =============================================================================

// Filter narrows a summary by invoicing cadence.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterMonthly  Filter = "monthly"
	FilterBiweekly Filter = "biweekly"
)

// Valid reports whether f is a known filter.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterMonthly, FilterBiweekly:
		return true
	}
	return false
}

// frequency returns the cadence tag the filter selects, or nil for all.
func (f Filter) frequency() *billing.Frequency {
	switch f {
	case FilterMonthly:
		freq := billing.FrequencyMonthly
		return &freq
	case FilterBiweekly:
		freq := billing.FrequencyBiweekly
		return &freq
	default:
		return nil
	}
}

// installments returns the payout installments the filter selects, or
// nil for all.
func (f Filter) installments() []billing.Installment {
	switch f {
	case FilterMonthly:
		return []billing.Installment{billing.InstallmentSingle}
	case FilterBiweekly:
		return []billing.Installment{billing.InstallmentFirst, billing.InstallmentSecond}
	default:
		return nil
	}
}

// =============================================================================
// SUMMARY SHAPES
// =============================================================================

// DailySummary is the company's activity on one day.
type DailySummary struct {
	Date        time.Time
	Filter      Filter
	TotalAgents int
	SalesCount  int
	TotalSold   decimal.Decimal
}

// PaidAgent is one payout joined with its agent's identity.
type PaidAgent struct {
	Payout     billing.Payout
	AgentName  string
	AgentPhone string
}

// AgentTally is an agent's invoice count for a period, grouped by the
// cadence the invoices carry. Lists agents who invoiced, paid or not.
type AgentTally struct {
	AgentID      billing.AgentID
	AgentName    string
	AgentPhone   string
	Frequency    billing.Frequency
	InvoiceCount int
}

// MonthlySummary is the company's month: sales on one side, payouts on
// the other.
type MonthlySummary struct {
	Period         billing.YearMonth
	Filter         Filter
	TotalPaid      decimal.Decimal // bonus paid out
	TotalExtracted decimal.Decimal // remainders left above the tiers
	TotalSold      decimal.Decimal
	InvoiceCount   int
	PaidAgentCount int
	PaidAgents     []PaidAgent
	AgentTallies   []AgentTally
}

// BiweeklySummary is one half of a month for biweekly agents.
type BiweeklySummary struct {
	Period         billing.YearMonth
	Installment    billing.Installment
	TotalPaid      decimal.Decimal
	TotalExtracted decimal.Decimal
	TotalSold      decimal.Decimal
	InvoiceCount   int
	PaidAgentCount int
	PaidAgents     []PaidAgent
	AgentTallies   []AgentTally
}

// AgentMonthlySummary is one agent's purchases in a month.
type AgentMonthlySummary struct {
	Agent        billing.Agent
	Period       billing.YearMonth
	TotalBought  decimal.Decimal
	InvoiceCount int
}
