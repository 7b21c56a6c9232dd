/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  JSON shapes exchanged with clients. Kept separate from the domain
  types so wire formats can evolve without touching billing or report.

CONVENTIONS:
  - Monetary values travel as decimal strings, never floats
  - Dates: YYYY-MM-DD in; RFC3339 timestamps out
  - Blocked business outcomes use BlockedResponse, not ErrorResponse

SEE ALSO:
  - handlers.go: where these are populated
*/
package api

import (
	"time"

	"github.com/josemartunga-sudo/hstore/billing"
	"github.com/josemartunga-sudo/hstore/report"
)

// =============================================================================
// REQUESTS
// =============================================================================

// CreateAgentRequest registers an agent. The ID is caller-supplied.
type CreateAgentRequest struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	UserID int64  `json:"user_id"`
}

// UpdateAgentRequest rewrites an agent's name and phone.
type UpdateAgentRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// SetAgentStateRequest toggles the agent lifecycle.
type SetAgentStateRequest struct {
	State string `json:"state"` // active | suspended
}

// CreateInvoiceRequest records a sale. A non-empty electronic_amount
// and physical_amount each produce one invoice row, so a mixed sale
// yields two rows sharing the same date and cadence tag.
type CreateInvoiceRequest struct {
	AgentID          int64  `json:"agent_id"`
	UserID           int64  `json:"user_id"`
	Date             string `json:"date"` // YYYY-MM-DD, defaults to today
	Frequency        string `json:"frequency"` // monthly | biweekly, defaults to monthly
	ElectronicAmount string `json:"electronic_amount,omitempty"`
	PhysicalAmount   string `json:"physical_amount,omitempty"`
}

// UpdateInvoiceRequest rewrites an invoice's mutable fields.
type UpdateInvoiceRequest struct {
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	Channel   string `json:"channel"`
	Frequency string `json:"frequency"`
}

// RecordPayoutRequest asks for a payout for the period containing Date.
// Installment is optional; when empty the engine resolves it from the
// agent's cadence.
type RecordPayoutRequest struct {
	UserID      int64  `json:"user_id"`
	Date        string `json:"date"` // YYYY-MM-DD, defaults to today
	Installment string `json:"installment,omitempty"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type AgentDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	UserID    int64  `json:"user_id"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AgentDetailDTO adds the owning user to the agent record.
type AgentDetailDTO struct {
	AgentDTO
	Owner *UserDTO `json:"owner,omitempty"`
}

type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type InvoiceDTO struct {
	ID         int64  `json:"id"`
	Amount     string `json:"amount"`
	InvoicedAt string `json:"invoiced_at"`
	State      string `json:"state"`
	Channel    string `json:"channel"`
	Frequency  string `json:"frequency"`
	AgentID    int64  `json:"agent_id"`
	UserID     int64  `json:"user_id"`
}

// InvoiceDetailDTO adds agent and recording-user context to one invoice.
type InvoiceDetailDTO struct {
	InvoiceDTO
	Agent *AgentDTO `json:"agent,omitempty"`
	User  *UserDTO  `json:"user,omitempty"`
}

type PaymentReportDTO struct {
	Agent        AgentDTO `json:"agent"`
	Period       string   `json:"period"` // YYYY-MM
	Installment  string   `json:"installment"`
	TotalAmount  string   `json:"total_amount"`
	InvoiceCount int      `json:"invoice_count"`
	Bonus        string   `json:"bonus"`
	Remainder    string   `json:"remainder"`
	TierCount    string   `json:"tier_count"`
}

type PayoutDTO struct {
	ID          int64  `json:"id"`
	PaidAt      string `json:"paid_at"`
	PeriodDate  string `json:"period_date"`
	Installment string `json:"installment"`
	Bonus       string `json:"bonus"`
	Remainder   string `json:"remainder"`
	AgentID     int64  `json:"agent_id"`
	UserID      int64  `json:"user_id"`
}

type PayoutConfirmationDTO struct {
	Payout  PayoutDTO `json:"payout"`
	Message string    `json:"message"`
}

type FrequencySwitchDTO struct {
	Agent   AgentDTO `json:"agent"`
	Updated int64    `json:"updated_invoices"`
	Message string   `json:"message"`
}

type DailySummaryDTO struct {
	Date        string `json:"date"`
	Filter      string `json:"filter"`
	TotalAgents int    `json:"total_agents"`
	SalesCount  int    `json:"sales_count"`
	TotalSold   string `json:"total_sold"`
}

type PaidAgentDTO struct {
	Payout     PayoutDTO `json:"payout"`
	AgentName  string    `json:"agent_name"`
	AgentPhone string    `json:"agent_phone"`
}

type AgentTallyDTO struct {
	AgentID      int64  `json:"agent_id"`
	AgentName    string `json:"agent_name"`
	AgentPhone   string `json:"agent_phone"`
	Frequency    string `json:"frequency"`
	InvoiceCount int    `json:"invoice_count"`
}

type MonthlySummaryDTO struct {
	Period         string          `json:"period"`
	Filter         string          `json:"filter,omitempty"`
	Installment    string          `json:"installment,omitempty"`
	TotalPaid      string          `json:"total_paid"`
	TotalExtracted string          `json:"total_extracted"`
	TotalSold      string          `json:"total_sold"`
	InvoiceCount   int             `json:"invoice_count"`
	PaidAgentCount int             `json:"paid_agent_count"`
	PaidAgents     []PaidAgentDTO  `json:"paid_agents"`
	AgentTallies   []AgentTallyDTO `json:"agent_tallies"`
}

type AgentMonthlySummaryDTO struct {
	Agent        AgentDTO `json:"agent"`
	Period       string   `json:"period"`
	TotalBought  string   `json:"total_bought"`
	InvoiceCount int      `json:"invoice_count"`
}

// BlockedResponse reports an eligibility refusal. The reason string is
// the gate's, verbatim.
type BlockedResponse struct {
	Status string `json:"status"` // always "blocked"
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toAgentDTO(a billing.Agent) AgentDTO {
	return AgentDTO{
		ID:        int64(a.ID),
		Name:      a.Name,
		Phone:     a.Phone,
		UserID:    int64(a.UserID),
		State:     string(a.State),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}

func toInvoiceDTO(inv billing.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:         int64(inv.ID),
		Amount:     inv.Amount.String(),
		InvoicedAt: inv.InvoicedAt.Format(time.RFC3339),
		State:      string(inv.State),
		Channel:    string(inv.Channel),
		Frequency:  string(inv.Frequency),
		AgentID:    int64(inv.AgentID),
		UserID:     int64(inv.UserID),
	}
}

func toPayoutDTO(p billing.Payout) PayoutDTO {
	return PayoutDTO{
		ID:          int64(p.ID),
		PaidAt:      p.PaidAt.Format(time.RFC3339),
		PeriodDate:  p.PeriodDate.Format(time.RFC3339),
		Installment: string(p.Installment),
		Bonus:       p.Bonus.String(),
		Remainder:   p.Remainder.String(),
		AgentID:     int64(p.AgentID),
		UserID:      int64(p.UserID),
	}
}

func toPaymentReportDTO(rep billing.PaymentReport) PaymentReportDTO {
	return PaymentReportDTO{
		Agent:        toAgentDTO(rep.Agent),
		Period:       rep.Period.String(),
		Installment:  string(rep.Installment),
		TotalAmount:  rep.TotalAmount.String(),
		InvoiceCount: rep.InvoiceCount,
		Bonus:        rep.Bonus.String(),
		Remainder:    rep.Remainder.String(),
		TierCount:    rep.TierCount.String(),
	}
}

func toPaidAgentDTOs(paid []report.PaidAgent) []PaidAgentDTO {
	dtos := make([]PaidAgentDTO, len(paid))
	for i, p := range paid {
		dtos[i] = PaidAgentDTO{
			Payout:     toPayoutDTO(p.Payout),
			AgentName:  p.AgentName,
			AgentPhone: p.AgentPhone,
		}
	}
	return dtos
}

func toAgentTallyDTOs(tallies []report.AgentTally) []AgentTallyDTO {
	dtos := make([]AgentTallyDTO, len(tallies))
	for i, t := range tallies {
		dtos[i] = AgentTallyDTO{
			AgentID:      int64(t.AgentID),
			AgentName:    t.AgentName,
			AgentPhone:   t.AgentPhone,
			Frequency:    string(t.Frequency),
			InvoiceCount: t.InvoiceCount,
		}
	}
	return dtos
}
