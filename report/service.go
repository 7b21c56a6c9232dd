package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josemartunga-sudo/hstore/billing"
)

// =============================================================================
// STORE - What the summaries read
// =============================================================================

// CompanyInvoiceQuery narrows company-wide invoice scans.
type CompanyInvoiceQuery struct {
	Period    billing.YearMonth
	Day       *int               // restrict to one day-of-month
	Window    *billing.DayWindow // restrict to a half-month
	Frequency *billing.Frequency // restrict to one cadence tag
}

// Store is the read surface the summaries need. The sqlite store
// implements it alongside billing.Store.
type Store interface {
	FindAgent(ctx context.Context, id billing.AgentID) (*billing.Agent, error)
	CountAgents(ctx context.Context) (int, error)

	CountCompanyInvoices(ctx context.Context, q CompanyInvoiceQuery) (int, error)
	SumCompanyInvoiceAmount(ctx context.Context, q CompanyInvoiceQuery) (decimal.Decimal, error)

	CountInvoices(ctx context.Context, agentID billing.AgentID, period billing.YearMonth, window *billing.DayWindow) (int, error)
	SumInvoiceAmount(ctx context.Context, agentID billing.AgentID, period billing.YearMonth, window *billing.DayWindow) (decimal.Decimal, error)

	// Payout scans keyed by corresponding period. A nil installment list
	// means all installments.
	SumPayoutBonus(ctx context.Context, period billing.YearMonth, installments []billing.Installment) (decimal.Decimal, error)
	SumPayoutRemainder(ctx context.Context, period billing.YearMonth, installments []billing.Installment) (decimal.Decimal, error)
	CountPayouts(ctx context.Context, period billing.YearMonth, installments []billing.Installment) (int, error)
	ListPaidAgents(ctx context.Context, period billing.YearMonth, installments []billing.Installment) ([]PaidAgent, error)

	// InvoiceTalliesByAgent groups the period's invoices by agent and
	// cadence tag, agent name ascending.
	InvoiceTalliesByAgent(ctx context.Context, period billing.YearMonth, freq *billing.Frequency) ([]AgentTally, error)
}

// Service builds summaries. Construct with NewService.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// =============================================================================
// SUMMARIES
// =============================================================================

// DailySummary reports the company's sales on one day.
func (s *Service) DailySummary(ctx context.Context, date time.Time, filter Filter) (DailySummary, error) {
	if !filter.Valid() {
		filter = FilterAll
	}

	totalAgents, err := s.store.CountAgents(ctx)
	if err != nil {
		return DailySummary{}, fmt.Errorf("daily summary: %w", err)
	}

	day := date.Day()
	q := CompanyInvoiceQuery{
		Period:    billing.YearMonthOf(date),
		Day:       &day,
		Frequency: filter.frequency(),
	}

	count, err := s.store.CountCompanyInvoices(ctx, q)
	if err != nil {
		return DailySummary{}, fmt.Errorf("daily summary: %w", err)
	}
	sold, err := s.store.SumCompanyInvoiceAmount(ctx, q)
	if err != nil {
		return DailySummary{}, fmt.Errorf("daily summary: %w", err)
	}

	return DailySummary{
		Date:        date,
		Filter:      filter,
		TotalAgents: totalAgents,
		SalesCount:  count,
		TotalSold:   sold,
	}, nil
}

// MonthlySummary reports the company's month: what was sold and what was
// paid out, optionally narrowed to one cadence.
func (s *Service) MonthlySummary(ctx context.Context, date time.Time, filter Filter) (MonthlySummary, error) {
	if !filter.Valid() {
		filter = FilterAll
	}

	period := billing.YearMonthOf(date)
	installments := filter.installments()

	paid, err := s.store.SumPayoutBonus(ctx, period, installments)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}
	extracted, err := s.store.SumPayoutRemainder(ctx, period, installments)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}
	paidCount, err := s.store.CountPayouts(ctx, period, installments)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}

	q := CompanyInvoiceQuery{Period: period, Frequency: filter.frequency()}
	invoiceCount, err := s.store.CountCompanyInvoices(ctx, q)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}
	sold, err := s.store.SumCompanyInvoiceAmount(ctx, q)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}

	paidAgents, err := s.store.ListPaidAgents(ctx, period, installments)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}
	tallies, err := s.store.InvoiceTalliesByAgent(ctx, period, filter.frequency())
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}

	return MonthlySummary{
		Period:         period,
		Filter:         filter,
		TotalPaid:      paid,
		TotalExtracted: extracted,
		TotalSold:      sold,
		InvoiceCount:   invoiceCount,
		PaidAgentCount: paidCount,
		PaidAgents:     paidAgents,
		AgentTallies:   tallies,
	}, nil
}

// BiweeklySummary reports one half of a month for biweekly agents.
// Defaults to the first half when installment is not first/second.
func (s *Service) BiweeklySummary(ctx context.Context, date time.Time, installment billing.Installment) (BiweeklySummary, error) {
	if installment != billing.InstallmentSecond {
		installment = billing.InstallmentFirst
	}

	period := billing.YearMonthOf(date)
	installments := []billing.Installment{installment}
	freq := billing.FrequencyBiweekly

	paid, err := s.store.SumPayoutBonus(ctx, period, installments)
	if err != nil {
		return BiweeklySummary{}, fmt.Errorf("biweekly summary: %w", err)
	}
	extracted, err := s.store.SumPayoutRemainder(ctx, period, installments)
	if err != nil {
		return BiweeklySummary{}, fmt.Errorf("biweekly summary: %w", err)
	}
	paidCount, err := s.store.CountPayouts(ctx, period, installments)
	if err != nil {
		return BiweeklySummary{}, fmt.Errorf("biweekly summary: %w", err)
	}

	q := CompanyInvoiceQuery{
		Period:    period,
		Window:    billing.WindowFor(installment),
		Frequency: &freq,
	}
	invoiceCount, err := s.store.CountCompanyInvoices(ctx, q)
	if err != nil {
		return BiweeklySummary{}, fmt.Errorf("biweekly summary: %w", err)
	}
	sold, err := s.store.SumCompanyInvoiceAmount(ctx, q)
	if err != nil {
		return BiweeklySummary{}, fmt.Errorf("biweekly summary: %w", err)
	}

	paidAgents, err := s.store.ListPaidAgents(ctx, period, installments)
	if err != nil {
		return BiweeklySummary{}, fmt.Errorf("biweekly summary: %w", err)
	}
	tallies, err := s.store.InvoiceTalliesByAgent(ctx, period, &freq)
	if err != nil {
		return BiweeklySummary{}, fmt.Errorf("biweekly summary: %w", err)
	}

	return BiweeklySummary{
		Period:         period,
		Installment:    installment,
		TotalPaid:      paid,
		TotalExtracted: extracted,
		TotalSold:      sold,
		InvoiceCount:   invoiceCount,
		PaidAgentCount: paidCount,
		PaidAgents:     paidAgents,
		AgentTallies:   tallies,
	}, nil
}

// AgentMonthlySummary reports one agent's purchases in a month.
func (s *Service) AgentMonthlySummary(ctx context.Context, agentID billing.AgentID, date time.Time) (AgentMonthlySummary, error) {
	agent, err := s.store.FindAgent(ctx, agentID)
	if err != nil {
		return AgentMonthlySummary{}, fmt.Errorf("agent summary: %w", err)
	}
	if agent == nil {
		return AgentMonthlySummary{}, billing.ErrAgentNotFound
	}

	period := billing.YearMonthOf(date)
	count, err := s.store.CountInvoices(ctx, agentID, period, nil)
	if err != nil {
		return AgentMonthlySummary{}, fmt.Errorf("agent summary: %w", err)
	}
	total, err := s.store.SumInvoiceAmount(ctx, agentID, period, nil)
	if err != nil {
		return AgentMonthlySummary{}, fmt.Errorf("agent summary: %w", err)
	}

	return AgentMonthlySummary{
		Agent:        *agent,
		Period:       period,
		TotalBought:  total,
		InvoiceCount: count,
	}, nil
}
