package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josemartunga-sudo/hstore/billing"
	"github.com/josemartunga-sudo/hstore/report"
	"github.com/josemartunga-sudo/hstore/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.SaveUser(context.Background(), billing.User{
		Name: "op", Phone: "910000001", Email: "op@example.com",
		Role: billing.RoleAdmin, Active: true,
	})
	require.NoError(t, err)

	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustAgent(t *testing.T, store *sqlite.Store, id int64, name, phone string) {
	require.NoError(t, store.CreateAgent(context.Background(), billing.Agent{
		ID: billing.AgentID(id), Name: name, Phone: phone,
		UserID: 1, State: billing.AgentActive,
	}))
}

func mustInvoice(t *testing.T, store *sqlite.Store, agentID int64, date time.Time, amount string, freq billing.Frequency) billing.Invoice {
	inv, err := store.CreateInvoice(context.Background(), billing.Invoice{
		Amount: dec(amount), InvoicedAt: date,
		State: billing.InvoicePending, Channel: billing.ChannelPhysical,
		Frequency: freq, AgentID: billing.AgentID(agentID), UserID: 1,
	})
	require.NoError(t, err)
	return *inv
}

var jun10 = time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

// =============================================================================
// AGENT UNIQUENESS TESTS
// =============================================================================

func TestCreateAgent_DuplicatePhone_Rejected(t *testing.T) {
	// GIVEN: An agent registered with a phone
	// WHEN: Registering another agent under the same phone
	// THEN: ErrDuplicatePhone

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")

	err := store.CreateAgent(context.Background(), billing.Agent{
		ID: 2, Name: "Beto", Phone: "923000001", UserID: 1, State: billing.AgentActive,
	})

	assert.ErrorIs(t, err, billing.ErrDuplicatePhone)
}

func TestCreateAgent_DuplicateID_Rejected(t *testing.T) {
	// GIVEN: Agent 1 registered
	// WHEN: Registering a different agent reusing id 1
	// THEN: ErrDuplicateAgentID

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")

	err := store.CreateAgent(context.Background(), billing.Agent{
		ID: 1, Name: "Beto", Phone: "923000002", UserID: 1, State: billing.AgentActive,
	})

	assert.ErrorIs(t, err, billing.ErrDuplicateAgentID)
}

func TestFindAgentByPhone(t *testing.T) {
	// GIVEN: Two registered agents
	// WHEN: Looking one up by phone
	// THEN: The matching agent comes back; a stranger phone yields nil

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	mustAgent(t, store, 2, "Beto", "923000002")
	ctx := context.Background()

	found, err := store.FindAgentByPhone(ctx, "923000002")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Beto", found.Name)

	missing, err := store.FindAgentByPhone(ctx, "900000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListAgents_ActiveOnly(t *testing.T) {
	// GIVEN: One active and one suspended agent
	// WHEN: Listing with activeOnly
	// THEN: Only the active agent, name-ordered listing otherwise

	store := newTestStore(t)
	mustAgent(t, store, 1, "Zara", "923000001")
	mustAgent(t, store, 2, "Ana", "923000002")
	ctx := context.Background()

	ok, err := store.SetAgentState(ctx, 1, billing.AgentSuspended)
	require.NoError(t, err)
	require.True(t, ok)

	all, err := store.ListAgents(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name, "listing should be name-ordered")

	active, err := store.ListAgents(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ana", active[0].Name)
}

// =============================================================================
// PAYOUT UNIQUENESS TESTS
// =============================================================================

func TestCreatePayout_SamePeriodInstallment_Conflicts(t *testing.T) {
	// GIVEN: A payout for (agent 1, June, single)
	// WHEN: Inserting a second row for the same key, even on another day
	// THEN: ErrDuplicatePayout from the unique index

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	ctx := context.Background()

	_, err := store.CreatePayout(ctx, billing.Payout{
		PeriodDate: jun10, Installment: billing.InstallmentSingle,
		Bonus: dec("1800"), Remainder: dec("0"), AgentID: 1, UserID: 1,
	})
	require.NoError(t, err)

	_, err = store.CreatePayout(ctx, billing.Payout{
		PeriodDate:  time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC),
		Installment: billing.InstallmentSingle,
		Bonus:       dec("900"), Remainder: dec("0"), AgentID: 1, UserID: 1,
	})
	assert.ErrorIs(t, err, billing.ErrDuplicatePayout)
}

func TestCreatePayout_DifferentKeys_AllAllowed(t *testing.T) {
	// GIVEN: A payout for (agent 1, June, first)
	// WHEN: Inserting for another installment, another month, another agent
	// THEN: All three succeed

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	mustAgent(t, store, 2, "Beto", "923000002")
	ctx := context.Background()

	base := billing.Payout{
		PeriodDate: jun10, Installment: billing.InstallmentFirst,
		Bonus: dec("900"), Remainder: dec("0"), AgentID: 1, UserID: 1,
	}
	_, err := store.CreatePayout(ctx, base)
	require.NoError(t, err)

	second := base
	second.Installment = billing.InstallmentSecond
	_, err = store.CreatePayout(ctx, second)
	assert.NoError(t, err, "different installment must not conflict")

	july := base
	july.PeriodDate = time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	_, err = store.CreatePayout(ctx, july)
	assert.NoError(t, err, "different month must not conflict")

	other := base
	other.AgentID = 2
	_, err = store.CreatePayout(ctx, other)
	assert.NoError(t, err, "different agent must not conflict")
}

// =============================================================================
// AGGREGATION QUERY TESTS
// =============================================================================

func TestSumInvoiceAmount_DecimalExact(t *testing.T) {
	// GIVEN: Amounts chosen to expose binary-float drift
	// WHEN: Summing the agent's month
	// THEN: The sum is exact

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	mustInvoice(t, store, 1, jun10, "0.1", billing.FrequencyMonthly)
	mustInvoice(t, store, 1, jun10, "0.2", billing.FrequencyMonthly)
	mustInvoice(t, store, 1, jun10, "1999999999.99", billing.FrequencyMonthly)

	total, err := store.SumInvoiceAmount(context.Background(), 1,
		billing.YearMonth{Year: 2025, Month: time.June}, nil)

	require.NoError(t, err)
	assert.True(t, total.Equal(dec("2000000000.29")), "got %s", total)
}

func TestSumInvoiceAmount_WindowBounds(t *testing.T) {
	// GIVEN: Invoices on days 15 and 16
	// WHEN: Summing each half window
	// THEN: Day 15 lands in the first half, day 16 in the second

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	mustInvoice(t, store, 1, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), "100", billing.FrequencyBiweekly)
	mustInvoice(t, store, 1, time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC), "200", billing.FrequencyBiweekly)

	period := billing.YearMonth{Year: 2025, Month: time.June}
	ctx := context.Background()

	first, err := store.SumInvoiceAmount(ctx, 1, period, billing.WindowFor(billing.InstallmentFirst))
	require.NoError(t, err)
	assert.True(t, first.Equal(dec("100")), "got %s", first)

	second, err := store.SumInvoiceAmount(ctx, 1, period, billing.WindowFor(billing.InstallmentSecond))
	require.NoError(t, err)
	assert.True(t, second.Equal(dec("200")), "got %s", second)
}

func TestListInvoicesOn_FilterAndLimit(t *testing.T) {
	// GIVEN: Three invoices on June 10, mixed cadences
	// WHEN: Listing that day with a cadence filter and a limit
	// THEN: Both narrow the result

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	mustInvoice(t, store, 1, jun10, "100", billing.FrequencyMonthly)
	mustInvoice(t, store, 1, jun10, "200", billing.FrequencyBiweekly)
	mustInvoice(t, store, 1, jun10, "300", billing.FrequencyBiweekly)
	ctx := context.Background()

	all, err := store.ListInvoicesOn(ctx, jun10, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	freq := billing.FrequencyBiweekly
	biweekly, err := store.ListInvoicesOn(ctx, jun10, &freq, 0)
	require.NoError(t, err)
	assert.Len(t, biweekly, 2)

	capped, err := store.ListInvoicesOn(ctx, jun10, nil, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestResolveInvoice_PendingToPaid(t *testing.T) {
	// GIVEN: A pending invoice
	// WHEN: Resolving it
	// THEN: Its state flips to paid

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	inv := mustInvoice(t, store, 1, jun10, "100", billing.FrequencyMonthly)
	ctx := context.Background()

	found, err := store.ResolveInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, found)

	after, err := store.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, billing.InvoicePaid, after.State)
}

// =============================================================================
// REPORT QUERY TESTS
// =============================================================================

func TestListPaidAgents_JoinsAgentIdentity(t *testing.T) {
	// GIVEN: Payouts for two agents in June
	// WHEN: Listing the period's paid agents
	// THEN: Each payout carries its agent's name and phone

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	mustAgent(t, store, 2, "Beto", "923000002")
	ctx := context.Background()

	_, err := store.CreatePayout(ctx, billing.Payout{
		PeriodDate: jun10, Installment: billing.InstallmentSingle,
		Bonus: dec("1800"), Remainder: dec("0"), AgentID: 1, UserID: 1,
	})
	require.NoError(t, err)
	_, err = store.CreatePayout(ctx, billing.Payout{
		PeriodDate: jun10, Installment: billing.InstallmentFirst,
		Bonus: dec("900"), Remainder: dec("100"), AgentID: 2, UserID: 1,
	})
	require.NoError(t, err)

	paid, err := store.ListPaidAgents(ctx, billing.YearMonth{Year: 2025, Month: time.June}, nil)
	require.NoError(t, err)
	require.Len(t, paid, 2)

	names := []string{paid[0].AgentName, paid[1].AgentName}
	assert.Contains(t, names, "Ana")
	assert.Contains(t, names, "Beto")

	onlyFirst, err := store.ListPaidAgents(ctx, billing.YearMonth{Year: 2025, Month: time.June},
		[]billing.Installment{billing.InstallmentFirst})
	require.NoError(t, err)
	require.Len(t, onlyFirst, 1)
	assert.Equal(t, "Beto", onlyFirst[0].AgentName)
	assert.True(t, onlyFirst[0].Payout.Remainder.Equal(dec("100")))
}

func TestInvoiceTalliesByAgent_GroupsByCadence(t *testing.T) {
	// GIVEN: Agent 1 with mixed cadences and agent 2 monthly only
	// WHEN: Building the period's tallies
	// THEN: One row per (agent, cadence), name-ordered

	store := newTestStore(t)
	mustAgent(t, store, 1, "Zara", "923000001")
	mustAgent(t, store, 2, "Ana", "923000002")
	mustInvoice(t, store, 1, jun10, "100", billing.FrequencyMonthly)
	mustInvoice(t, store, 1, jun10, "200", billing.FrequencyBiweekly)
	mustInvoice(t, store, 1, jun10, "300", billing.FrequencyBiweekly)
	mustInvoice(t, store, 2, jun10, "400", billing.FrequencyMonthly)

	tallies, err := store.InvoiceTalliesByAgent(context.Background(),
		billing.YearMonth{Year: 2025, Month: time.June}, nil)

	require.NoError(t, err)
	require.Len(t, tallies, 3)
	assert.Equal(t, "Ana", tallies[0].AgentName, "tallies should be name-ordered")

	counts := map[billing.Frequency]int{}
	for _, tl := range tallies {
		if tl.AgentName == "Zara" {
			counts[tl.Frequency] = tl.InvoiceCount
		}
	}
	assert.Equal(t, 1, counts[billing.FrequencyMonthly])
	assert.Equal(t, 2, counts[billing.FrequencyBiweekly])
}

func TestCompanyInvoiceQueries_DayAndFrequency(t *testing.T) {
	// GIVEN: Invoices across agents, days and cadences
	// WHEN: Counting and summing with a day and a cadence restriction
	// THEN: Both restrictions apply to both queries

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	mustAgent(t, store, 2, "Beto", "923000002")
	mustInvoice(t, store, 1, jun10, "100", billing.FrequencyMonthly)
	mustInvoice(t, store, 2, jun10, "200", billing.FrequencyBiweekly)
	mustInvoice(t, store, 1, time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC), "400", billing.FrequencyMonthly)

	day := 10
	freq := billing.FrequencyMonthly
	q := report.CompanyInvoiceQuery{
		Period:    billing.YearMonth{Year: 2025, Month: time.June},
		Day:       &day,
		Frequency: &freq,
	}
	ctx := context.Background()

	count, err := store.CountCompanyInvoices(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	sum, err := store.SumCompanyInvoiceAmount(ctx, q)
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec("100")), "got %s", sum)
}

// =============================================================================
// TIMESTAMP NORMALIZATION TESTS
// =============================================================================

func TestCreateInvoice_OffsetTimestamp_LandsInUTCMonth(t *testing.T) {
	// GIVEN: An invoice stamped just after local midnight on July 1, +02:00
	// WHEN: Counting and summing each candidate month
	// THEN: The row lands in the month of its UTC instant (June), and the
	//       Go-side period of the stored timestamp says the same

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	ctx := context.Background()

	local := time.Date(2025, time.July, 1, 0, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))
	inv := mustInvoice(t, store, 1, local, "100", billing.FrequencyMonthly)

	june := billing.YearMonth{Year: 2025, Month: time.June}
	july := billing.YearMonth{Year: 2025, Month: time.July}

	assert.Equal(t, june, billing.YearMonthOf(inv.InvoicedAt))

	count, err := store.CountInvoices(ctx, 1, june, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.CountInvoices(ctx, 1, july, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	sum, err := store.SumInvoiceAmount(ctx, 1, june, nil)
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec("100")), "got %s", sum)
}

func TestCreateInvoice_OffsetTimestamp_WindowFollowsUTCDay(t *testing.T) {
	// GIVEN: An invoice stamped June 16 00:30 at +02:00, i.e. June 15 UTC
	// WHEN: Summing each half window
	// THEN: The row counts in the first half

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	ctx := context.Background()

	local := time.Date(2025, time.June, 16, 0, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))
	mustInvoice(t, store, 1, local, "100", billing.FrequencyBiweekly)

	june := billing.YearMonth{Year: 2025, Month: time.June}

	first, err := store.SumInvoiceAmount(ctx, 1, june, billing.WindowFor(billing.InstallmentFirst))
	require.NoError(t, err)
	assert.True(t, first.Equal(dec("100")), "got %s", first)

	second, err := store.SumInvoiceAmount(ctx, 1, june, billing.WindowFor(billing.InstallmentSecond))
	require.NoError(t, err)
	assert.True(t, second.IsZero(), "got %s", second)
}

func TestCreatePayout_OffsetPeriodDate_KeyedByUTCMonth(t *testing.T) {
	// GIVEN: A payout whose period date is July 1 00:30 at +02:00
	// WHEN: Looking it up and re-recording under the UTC month (June)
	// THEN: The lookup finds it and the second insert conflicts

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	ctx := context.Background()

	local := time.Date(2025, time.July, 1, 0, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))
	created, err := store.CreatePayout(ctx, billing.Payout{
		PeriodDate: local, Installment: billing.InstallmentSingle,
		Bonus: dec("1800"), Remainder: dec("0"), AgentID: 1, UserID: 1,
	})
	require.NoError(t, err)

	june := billing.YearMonth{Year: 2025, Month: time.June}
	assert.Equal(t, june, billing.YearMonthOf(created.PeriodDate))

	found, err := store.FindPayout(ctx, 1, june, billing.InstallmentSingle)
	require.NoError(t, err)
	require.NotNil(t, found)

	_, err = store.CreatePayout(ctx, billing.Payout{
		PeriodDate: jun10, Installment: billing.InstallmentSingle,
		Bonus: dec("900"), Remainder: dec("0"), AgentID: 1, UserID: 1,
	})
	assert.ErrorIs(t, err, billing.ErrDuplicatePayout)
}

// =============================================================================
// BATCH INSERT TESTS
// =============================================================================

func TestCreateInvoices_SecondRowFails_NothingPersists(t *testing.T) {
	// GIVEN: A two-row batch whose second row references a missing agent
	// WHEN: Inserting the batch
	// THEN: The insert fails and the first row is rolled back too

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	ctx := context.Background()

	_, err := store.CreateInvoices(ctx, []billing.Invoice{
		{Amount: dec("100"), InvoicedAt: jun10, State: billing.InvoicePending,
			Channel: billing.ChannelElectronic, Frequency: billing.FrequencyMonthly,
			AgentID: 1, UserID: 1},
		{Amount: dec("200"), InvoicedAt: jun10, State: billing.InvoicePending,
			Channel: billing.ChannelPhysical, Frequency: billing.FrequencyMonthly,
			AgentID: 99, UserID: 1},
	})
	require.Error(t, err)

	count, err := store.CountInvoices(ctx, 1, billing.YearMonth{Year: 2025, Month: time.June}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCreateInvoices_BothRowsPersist_InOrder(t *testing.T) {
	// GIVEN: A valid electronic + physical batch
	// WHEN: Inserting it
	// THEN: Both rows come back with ids, in input order

	store := newTestStore(t)
	mustAgent(t, store, 1, "Ana", "923000001")
	ctx := context.Background()

	created, err := store.CreateInvoices(ctx, []billing.Invoice{
		{Amount: dec("30000"), InvoicedAt: jun10, State: billing.InvoicePending,
			Channel: billing.ChannelElectronic, Frequency: billing.FrequencyMonthly,
			AgentID: 1, UserID: 1},
		{Amount: dec("5000"), InvoicedAt: jun10, State: billing.InvoicePending,
			Channel: billing.ChannelPhysical, Frequency: billing.FrequencyMonthly,
			AgentID: 1, UserID: 1},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, billing.ChannelElectronic, created[0].Channel)
	assert.Equal(t, billing.ChannelPhysical, created[1].Channel)
	assert.NotZero(t, created[0].ID)
	assert.NotZero(t, created[1].ID)
}
