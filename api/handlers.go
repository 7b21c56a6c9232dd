/*
handlers.go - HTTP API handlers for the sales and payout system

PURPOSE:
  Exposes the billing engine and report service via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  Agents:
    GET    /api/agents                      List agents (?active=true)
    POST   /api/agents                      Register agent
    GET    /api/agents/{id}                 Get agent with owning user
    PUT    /api/agents/{id}                 Update name/phone
    DELETE /api/agents/{id}                 Delete agent
    POST   /api/agents/{id}/state           Activate/suspend
    POST   /api/agents/{id}/frequency-switch Switch to biweekly cadence
    GET    /api/agents/{id}/payment-report  Payment report (?date=&installment=)
    POST   /api/agents/{id}/payouts         Record a payout
    GET    /api/agents/{id}/summary         Agent's month (?date=)

  Invoices:
    GET    /api/invoices                    A day's invoices (?date=&filter=&limit=)
    POST   /api/invoices                    Record a sale (up to two rows)
    GET    /api/invoices/{id}               Get invoice with agent context
    PUT    /api/invoices/{id}               Update invoice
    DELETE /api/invoices/{id}               Delete invoice
    POST   /api/invoices/{id}/resolve       Mark pending invoice paid

  Reports:
    GET    /api/reports/daily               Company day (?date=&filter=)
    GET    /api/reports/monthly             Company month (?date=&filter=)
    GET    /api/reports/biweekly            Company half-month (?date=&installment=)

ERROR HANDLING:
  System errors become JSON ErrorResponse with an HTTP status:
  - 400: validation errors, invalid input
  - 404: resource not found
  - 409: duplicate agent id/phone
  - 500: internal errors
  Eligibility refusals are NOT errors: they become 409 BlockedResponse
  with the gate's reason verbatim.

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/josemartunga-sudo/hstore/billing"
	"github.com/josemartunga-sudo/hstore/report"
	"github.com/josemartunga-sudo/hstore/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Engine  *billing.Engine
	Reports *report.Service
	Log     zerolog.Logger
}

// NewHandler wires the handler to its collaborators.
func NewHandler(store *sqlite.Store, engine *billing.Engine, reports *report.Service, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Engine: engine, Reports: reports, Log: log}
}

// =============================================================================
// AGENT HANDLERS
// =============================================================================

// ListAgents returns all agents, or only active ones with ?active=true.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	agents, err := h.Store.ListAgents(r.Context(), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list agents", err)
		return
	}

	dtos := make([]AgentDTO, len(agents))
	for i, a := range agents {
		dtos[i] = toAgentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAgent registers an agent with a caller-supplied ID.
func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID <= 0 || req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "id, name and phone are required", nil)
		return
	}

	agent := billing.Agent{
		ID:     billing.AgentID(req.ID),
		Name:   req.Name,
		Phone:  req.Phone,
		UserID: billing.UserID(req.UserID),
		State:  billing.AgentActive,
	}
	if err := h.Store.CreateAgent(r.Context(), agent); err != nil {
		writeDomainError(w, "Failed to create agent", err)
		return
	}

	created, err := h.Store.FindAgent(r.Context(), agent.ID)
	if err != nil || created == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read back agent", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgentDTO(*created))
}

// GetAgent returns one agent plus its owning user.
func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	agent, err := h.Store.FindAgent(r.Context(), billing.AgentID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get agent", err)
		return
	}
	if agent == nil {
		writeError(w, http.StatusNotFound, "Agent not found", nil)
		return
	}

	detail := AgentDetailDTO{AgentDTO: toAgentDTO(*agent)}
	if owner, err := h.Store.GetUser(r.Context(), agent.UserID); err == nil && owner != nil {
		detail.Owner = &UserDTO{
			ID:    int64(owner.ID),
			Name:  owner.Name,
			Phone: owner.Phone,
			Email: owner.Email,
			Role:  string(owner.Role),
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateAgent rewrites an agent's name and phone.
func (h *Handler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required", nil)
		return
	}

	found, err := h.Store.UpdateAgent(r.Context(), billing.AgentID(id), req.Name, req.Phone)
	if err != nil {
		writeDomainError(w, "Failed to update agent", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Agent not found", nil)
		return
	}

	agent, err := h.Store.FindAgent(r.Context(), billing.AgentID(id))
	if err != nil || agent == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read back agent", err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentDTO(*agent))
}

// DeleteAgent removes an agent.
func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.Store.DeleteAgent(r.Context(), billing.AgentID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete agent", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Agent not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAgentState toggles an agent between active and suspended.
func (h *Handler) SetAgentState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SetAgentStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	state := billing.AgentState(req.State)
	if state != billing.AgentActive && state != billing.AgentSuspended {
		writeError(w, http.StatusBadRequest, "state must be active or suspended", nil)
		return
	}

	found, err := h.Store.SetAgentState(r.Context(), billing.AgentID(id), state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set agent state", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Agent not found", nil)
		return
	}

	agent, err := h.Store.FindAgent(r.Context(), billing.AgentID(id))
	if err != nil || agent == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read back agent", err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentDTO(*agent))
}

// SwitchFrequency retags the agent's current-month invoices to biweekly.
func (h *Handler) SwitchFrequency(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	res, err := h.Engine.SwitchToFortnightly(r.Context(), billing.AgentID(id))
	switch {
	case res.Blocked():
		writeJSON(w, http.StatusConflict, BlockedResponse{Status: "blocked", Reason: string(res.Reason)})
	case res.OK():
		writeJSON(w, http.StatusOK, FrequencySwitchDTO{
			Agent:   toAgentDTO(res.Value.Agent),
			Updated: res.Value.Updated,
			Message: res.Value.Message,
		})
	default:
		writeDomainError(w, "Failed to switch frequency", firstErr(res.Err, err))
	}
}

// =============================================================================
// PAYOUT HANDLERS
// =============================================================================

// GetPaymentReport previews the agent's bonus for a period without
// recording anything.
func (h *Handler) GetPaymentReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	installment, err := queryInstallment(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid installment (use single, first or second)", err)
		return
	}

	res, resErr := h.Engine.PaymentReport(r.Context(), billing.AgentID(id), date, installment)
	if !res.OK() {
		writeDomainError(w, "Failed to build payment report", firstErr(res.Err, resErr))
		return
	}
	writeJSON(w, http.StatusOK, toPaymentReportDTO(res.Value))
}

// RecordPayout runs the eligibility gate and, if it passes, records the
// agent's payout for the period containing the requested date.
func (h *Handler) RecordPayout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req RecordPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}

	var installment *billing.Installment
	if req.Installment != "" {
		inst := billing.Installment(req.Installment)
		if !inst.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid installment (use single, first or second)", nil)
			return
		}
		installment = &inst
	}

	res, resErr := h.Engine.RecordPayout(r.Context(), billing.UserID(req.UserID), billing.AgentID(id), date, installment)
	switch {
	case res.Blocked():
		writeJSON(w, http.StatusConflict, BlockedResponse{Status: "blocked", Reason: string(res.Reason)})
	case res.OK():
		writeJSON(w, http.StatusCreated, PayoutConfirmationDTO{
			Payout:  toPayoutDTO(res.Value.Payout),
			Message: res.Value.Message,
		})
	default:
		writeDomainError(w, "Failed to record payout", firstErr(res.Err, resErr))
	}
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// ListDayInvoices returns the company's invoices for one day.
func (h *Handler) ListDayInvoices(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	filter := report.Filter(r.URL.Query().Get("filter"))
	if !filter.Valid() {
		filter = report.FilterAll
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
	}

	invoices, err := h.Store.ListInvoicesOn(r.Context(), date, filterFrequency(filter), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}

	dtos := make([]InvoiceDTO, len(invoices))
	for i, inv := range invoices {
		dtos[i] = toInvoiceDTO(inv)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateInvoice records a sale as up to two invoice rows, one per
// channel with a non-empty amount.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ElectronicAmount == "" && req.PhysicalAmount == "" {
		writeError(w, http.StatusBadRequest, "At least one of electronic_amount or physical_amount is required", nil)
		return
	}

	agent, err := h.Store.FindAgent(r.Context(), billing.AgentID(req.AgentID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get agent", err)
		return
	}
	if agent == nil {
		writeError(w, http.StatusNotFound, "Agent not found", nil)
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}

	freq := billing.FrequencyMonthly
	if req.Frequency != "" {
		freq = billing.Frequency(req.Frequency)
		if freq != billing.FrequencyMonthly && freq != billing.FrequencyBiweekly {
			writeError(w, http.StatusBadRequest, "frequency must be monthly or biweekly", nil)
			return
		}
	}

	type channelAmount struct {
		channel billing.Channel
		raw     string
	}
	parts := []channelAmount{
		{billing.ChannelElectronic, req.ElectronicAmount},
		{billing.ChannelPhysical, req.PhysicalAmount},
	}

	var rows []billing.Invoice
	for _, part := range parts {
		if part.raw == "" {
			continue
		}
		amount, err := decimal.NewFromString(part.raw)
		if err != nil || amount.IsNegative() || amount.IsZero() {
			writeError(w, http.StatusBadRequest, "Amounts must be positive decimal strings", err)
			return
		}
		rows = append(rows, billing.Invoice{
			Amount:     amount,
			InvoicedAt: date,
			State:      billing.InvoicePending,
			Channel:    part.channel,
			Frequency:  freq,
			AgentID:    agent.ID,
			UserID:     billing.UserID(req.UserID),
		})
	}

	// One transaction: a mixed sale never records just one of its halves.
	invoices, err := h.Store.CreateInvoices(r.Context(), rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create invoice", err)
		return
	}
	created := make([]InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		created = append(created, toInvoiceDTO(inv))
	}

	writeJSON(w, http.StatusCreated, created)
}

// GetInvoice returns one invoice with agent context.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	inv, err := h.Store.GetInvoice(r.Context(), billing.InvoiceID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get invoice", err)
		return
	}
	if inv == nil {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}

	detail := InvoiceDetailDTO{InvoiceDTO: toInvoiceDTO(*inv)}
	if agent, err := h.Store.FindAgent(r.Context(), inv.AgentID); err == nil && agent != nil {
		dto := toAgentDTO(*agent)
		detail.Agent = &dto
	}
	if user, err := h.Store.GetUser(r.Context(), inv.UserID); err == nil && user != nil {
		detail.User = &UserDTO{
			ID:    int64(user.ID),
			Name:  user.Name,
			Phone: user.Phone,
			Email: user.Email,
			Role:  string(user.Role),
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateInvoice rewrites an invoice's amount, date, channel and cadence
// tag.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	inv, err := h.Store.GetInvoice(r.Context(), billing.InvoiceID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get invoice", err)
		return
	}
	if inv == nil {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}

	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil || amount.IsNegative() || amount.IsZero() {
			writeError(w, http.StatusBadRequest, "Amount must be a positive decimal string", err)
			return
		}
		inv.Amount = amount
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		inv.InvoicedAt = date
	}
	if req.Channel != "" {
		channel := billing.Channel(req.Channel)
		if channel != billing.ChannelPhysical && channel != billing.ChannelElectronic {
			writeError(w, http.StatusBadRequest, "channel must be physical or electronic", nil)
			return
		}
		inv.Channel = channel
	}
	if req.Frequency != "" {
		freq := billing.Frequency(req.Frequency)
		if freq != billing.FrequencyMonthly && freq != billing.FrequencyBiweekly {
			writeError(w, http.StatusBadRequest, "frequency must be monthly or biweekly", nil)
			return
		}
		inv.Frequency = freq
	}

	if _, err := h.Store.UpdateInvoice(r.Context(), *inv); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update invoice", err)
		return
	}

	updated, err := h.Store.GetInvoice(r.Context(), inv.ID)
	if err != nil || updated == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read back invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(*updated))
}

// DeleteInvoice removes an invoice.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.Store.DeleteInvoice(r.Context(), billing.InvoiceID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete invoice", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResolveInvoice transitions an invoice from pending to paid.
func (h *Handler) ResolveInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.Store.ResolveInvoice(r.Context(), billing.InvoiceID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve invoice", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}

	inv, err := h.Store.GetInvoice(r.Context(), billing.InvoiceID(id))
	if err != nil || inv == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read back invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(*inv))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetDailySummary reports the company's sales on one day.
func (h *Handler) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	filter := report.Filter(r.URL.Query().Get("filter"))

	summary, err := h.Reports.DailySummary(r.Context(), date, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build daily summary", err)
		return
	}

	writeJSON(w, http.StatusOK, DailySummaryDTO{
		Date:        summary.Date.Format("2006-01-02"),
		Filter:      string(summary.Filter),
		TotalAgents: summary.TotalAgents,
		SalesCount:  summary.SalesCount,
		TotalSold:   summary.TotalSold.String(),
	})
}

// GetMonthlySummary reports the company's month.
func (h *Handler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	filter := report.Filter(r.URL.Query().Get("filter"))

	summary, err := h.Reports.MonthlySummary(r.Context(), date, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build monthly summary", err)
		return
	}

	writeJSON(w, http.StatusOK, MonthlySummaryDTO{
		Period:         summary.Period.String(),
		Filter:         string(summary.Filter),
		TotalPaid:      summary.TotalPaid.String(),
		TotalExtracted: summary.TotalExtracted.String(),
		TotalSold:      summary.TotalSold.String(),
		InvoiceCount:   summary.InvoiceCount,
		PaidAgentCount: summary.PaidAgentCount,
		PaidAgents:     toPaidAgentDTOs(summary.PaidAgents),
		AgentTallies:   toAgentTallyDTOs(summary.AgentTallies),
	})
}

// GetBiweeklySummary reports one half of a month for biweekly agents.
func (h *Handler) GetBiweeklySummary(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	installment := billing.Installment(r.URL.Query().Get("installment"))

	summary, err := h.Reports.BiweeklySummary(r.Context(), date, installment)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build biweekly summary", err)
		return
	}

	writeJSON(w, http.StatusOK, MonthlySummaryDTO{
		Period:         summary.Period.String(),
		Installment:    string(summary.Installment),
		TotalPaid:      summary.TotalPaid.String(),
		TotalExtracted: summary.TotalExtracted.String(),
		TotalSold:      summary.TotalSold.String(),
		InvoiceCount:   summary.InvoiceCount,
		PaidAgentCount: summary.PaidAgentCount,
		PaidAgents:     toPaidAgentDTOs(summary.PaidAgents),
		AgentTallies:   toAgentTallyDTOs(summary.AgentTallies),
	})
}

// GetAgentSummary reports one agent's purchases for a month.
func (h *Handler) GetAgentSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	summary, err := h.Reports.AgentMonthlySummary(r.Context(), billing.AgentID(id), date)
	if err != nil {
		writeDomainError(w, "Failed to build agent summary", err)
		return
	}

	writeJSON(w, http.StatusOK, AgentMonthlySummaryDTO{
		Agent:        toAgentDTO(summary.Agent),
		Period:       summary.Period.String(),
		TotalBought:  summary.TotalBought.String(),
		InvoiceCount: summary.InvoiceCount,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// queryDate parses a YYYY-MM-DD query param, defaulting to today.
func queryDate(r *http.Request, key string) (time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

func queryInstallment(r *http.Request) (*billing.Installment, error) {
	s := r.URL.Query().Get("installment")
	if s == "" {
		return nil, nil
	}
	inst := billing.Installment(s)
	if !inst.Valid() {
		return nil, billing.ErrInvalidInput
	}
	return &inst, nil
}

func filterFrequency(f report.Filter) *billing.Frequency {
	switch f {
	case report.FilterMonthly:
		freq := billing.FrequencyMonthly
		return &freq
	case report.FilterBiweekly:
		freq := billing.FrequencyBiweekly
		return &freq
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, billing.ErrDuplicatePhone) || errors.Is(err, billing.ErrDuplicateAgentID):
		writeError(w, http.StatusConflict, message, err)
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
