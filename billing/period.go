package billing

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// YEAR-MONTH - The billing period key
// =============================================================================

// YearMonth identifies a billing period. Payout uniqueness and invoice
// aggregation are always keyed by (year, month), never by exact dates.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the period containing t.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Contains reports whether t falls inside this period.
func (ym YearMonth) Contains(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

// =============================================================================
// DAY WINDOW - The half-month slice an installment covers
// =============================================================================

// DayWindow bounds day-of-month, both ends inclusive. The upper bound of
// the second half is deliberately open-ended (32) to tolerate every month
// length without per-month arithmetic.
type DayWindow struct {
	FromDay int
	ToDay   int
}

var (
	firstHalfWindow  = DayWindow{FromDay: 1, ToDay: 15}
	secondHalfWindow = DayWindow{FromDay: 16, ToDay: 32}
)

// WindowFor returns the day window an installment covers, or nil for
// the single installment (whole month, no day filter).
func WindowFor(installment Installment) *DayWindow {
	switch installment {
	case InstallmentFirst:
		w := firstHalfWindow
		return &w
	case InstallmentSecond:
		w := secondHalfWindow
		return &w
	default:
		return nil
	}
}

// Contains reports whether day-of-month d falls inside the window.
func (w DayWindow) Contains(d int) bool {
	return d >= w.FromDay && d <= w.ToDay
}

// =============================================================================
// INSTALLMENT RESOLUTION
// =============================================================================

// ResolveInstallment determines which installment applies to an agent for
// a date. An explicit installment always wins. Otherwise the agent's
// cadence is read off any invoice of that month: no invoice, or a monthly
// one, resolves to single; a biweekly one resolves to first.
//
// The second installment is never inferred here. It is only reachable via
// an explicit argument; the caller context decides when to ask for it.
func (e *Engine) ResolveInstallment(ctx context.Context, agentID AgentID, date time.Time, explicit *Installment) (Installment, error) {
	if explicit != nil {
		return *explicit, nil
	}

	inv, err := e.store.FirstInvoiceOfMonth(ctx, agentID, YearMonthOf(date))
	if err != nil {
		return "", fmt.Errorf("resolve installment: %w", err)
	}

	if inv == nil || inv.Frequency == FrequencyMonthly {
		return InstallmentSingle, nil
	}
	return InstallmentFirst, nil
}
