package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/agendahub/svc/billing"
	"github.com/agendahub/agendahub/svc/organization"
	"github.com/agendahub/agendahub/svc/plan"
)

// staticAnalyticsStore returns canned aggregates.
type staticAnalyticsStore struct {
	total, active, expiring, renewed, cancelled int64

	currentMonthPlans  []string
	previousMonthPlans []string
	activePlans        []string
	monthBoundary      time.Time
}

func (s *staticAnalyticsStore) CountOrganizations(context.Context) (int64, error) {
	return s.total, nil
}

func (s *staticAnalyticsStore) CountActiveOrganizations(context.Context) (int64, error) {
	return s.active, nil
}

func (s *staticAnalyticsStore) CountExpiringBefore(context.Context, time.Time) (int64, error) {
	return s.expiring, nil
}

func (s *staticAnalyticsStore) CountRenewedSince(context.Context, time.Time) (int64, error) {
	return s.renewed, nil
}

func (s *staticAnalyticsStore) CountCancelledSince(context.Context, time.Time) (int64, error) {
	return s.cancelled, nil
}

func (s *staticAnalyticsStore) PlanIDsCreatedBetween(_ context.Context, from, _ time.Time) ([]string, error) {
	if from.Before(s.monthBoundary) {
		return s.previousMonthPlans, nil
	}
	return s.currentMonthPlans, nil
}

func (s *staticAnalyticsStore) ActivePlanIDs(context.Context) ([]string, error) {
	return s.activePlans, nil
}

func analyticsCatalog(t *testing.T) *plan.Catalog {
	t.Helper()
	catalog, err := plan.NewCatalog(context.Background(), plan.NewMemorySource(
		plan.Plan{ID: "p1", Name: "Starter", Price: plan.Money{Amount: 5999, Currency: "BRL"}},
		plan.Plan{ID: "p2", Name: "Pro", Price: plan.Money{Amount: 12999, Currency: "BRL"}},
	))
	require.NoError(t, err)
	return catalog
}

func TestAnalyticsSummary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	store := &staticAnalyticsStore{
		total:     10,
		active:    6,
		expiring:  2,
		renewed:   3,
		cancelled: 1,
		// Current month: one Starter and one Pro. Previous month: one Starter.
		currentMonthPlans:  []string{"p1", "p2"},
		previousMonthPlans: []string{"p1"},
		activePlans:        []string{"p1", "p1", "p2"},
		monthBoundary:      monthStart,
	}

	analytics := billing.NewAnalytics(
		store,
		organization.NewMemoryStore(),
		billing.NewMemoryLedgerStore(),
		analyticsCatalog(t),
		billing.WithAnalyticsLogger(discardLogger()),
		billing.WithAnalyticsClock(func() time.Time { return now }),
	)

	summary, err := analytics.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), summary.TotalOrganizations)
	assert.Equal(t, int64(6), summary.ActiveOrganizations)
	assert.Equal(t, int64(2), summary.ExpiringWithin7Days)
	assert.Equal(t, int64(3), summary.RenewedLast30Days)
	assert.Equal(t, int64(1), summary.CancelledLast30Days)

	assert.Equal(t, int64(5999+12999), summary.RevenueCurrentMonth.Amount)
	assert.Equal(t, int64(5999), summary.RevenuePreviousMonth.Amount)
	assert.Equal(t, "BRL", summary.RevenueCurrentMonth.Currency)

	// (18998 - 5999) / 5999 * 100
	assert.InDelta(t, 216.68, summary.RevenueGrowthPercent, 0.01)

	// Two Starter plus one Pro currently active.
	assert.Equal(t, int64(2*5999+12999), summary.MonthlyRecurringRevenue.Amount)
}

func TestAnalyticsSummaryGrowthEdgeCases(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no previous revenue counts as full growth", func(t *testing.T) {
		t.Parallel()

		store := &staticAnalyticsStore{
			currentMonthPlans: []string{"p1"},
			monthBoundary:     monthStart,
		}
		analytics := billing.NewAnalytics(store, organization.NewMemoryStore(),
			billing.NewMemoryLedgerStore(), analyticsCatalog(t),
			billing.WithAnalyticsLogger(discardLogger()),
			billing.WithAnalyticsClock(func() time.Time { return now }))

		summary, err := analytics.Summary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 100.0, summary.RevenueGrowthPercent)
	})

	t.Run("no revenue at all is zero growth", func(t *testing.T) {
		t.Parallel()

		store := &staticAnalyticsStore{monthBoundary: monthStart}
		analytics := billing.NewAnalytics(store, organization.NewMemoryStore(),
			billing.NewMemoryLedgerStore(), analyticsCatalog(t),
			billing.WithAnalyticsLogger(discardLogger()),
			billing.WithAnalyticsClock(func() time.Time { return now }))

		summary, err := analytics.Summary(context.Background())
		require.NoError(t, err)
		assert.Zero(t, summary.RevenueGrowthPercent)
	})

	t.Run("removed plan ids contribute nothing", func(t *testing.T) {
		t.Parallel()

		store := &staticAnalyticsStore{
			currentMonthPlans: []string{"p1", "deleted-plan"},
			monthBoundary:     monthStart,
		}
		analytics := billing.NewAnalytics(store, organization.NewMemoryStore(),
			billing.NewMemoryLedgerStore(), analyticsCatalog(t),
			billing.WithAnalyticsLogger(discardLogger()),
			billing.WithAnalyticsClock(func() time.Time { return now }))

		summary, err := analytics.Summary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(5999), summary.RevenueCurrentMonth.Amount)
	})
}

func TestAnalyticsExpiringWithin(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	soonAt := now.Add(24 * time.Hour)
	laterAt := now.Add(20 * 24 * time.Hour)

	soon := &organization.Organization{
		ID: uuid.New(), Enabled: true, IsPlanActive: true, PlanExpiresAt: &soonAt,
	}
	later := &organization.Organization{
		ID: uuid.New(), Enabled: true, IsPlanActive: true, PlanExpiresAt: &laterAt,
	}

	analytics := billing.NewAnalytics(&staticAnalyticsStore{},
		organization.NewMemoryStore(soon, later),
		billing.NewMemoryLedgerStore(), analyticsCatalog(t),
		billing.WithAnalyticsLogger(discardLogger()),
		billing.WithAnalyticsClock(func() time.Time { return now }))

	t.Run("within seven days", func(t *testing.T) {
		t.Parallel()

		got, err := analytics.ExpiringWithin(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, soon.ID, got[0].ID)
	})

	t.Run("rejects non-positive days", func(t *testing.T) {
		t.Parallel()

		_, err := analytics.ExpiringWithin(context.Background(), 0)
		require.Error(t, err)
	})
}

func TestAnalyticsHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	orgID := uuid.New()
	ledger := billing.NewMemoryLedgerStore()

	require.NoError(t, ledger.Create(ctx, &billing.Subscription{
		OrganizationID: orgID, PlanID: "p1", Status: billing.StatusActive, PaymentID: "pix_1",
	}))
	require.NoError(t, ledger.Create(ctx, &billing.Subscription{
		OrganizationID: orgID, PlanID: "p1", Status: billing.StatusPending, PaymentID: "pix_2", IsRenewal: true,
	}))
	require.NoError(t, ledger.Create(ctx, &billing.Subscription{
		OrganizationID: uuid.New(), PlanID: "p2", Status: billing.StatusActive, PaymentID: "pix_3",
	}))

	analytics := billing.NewAnalytics(&staticAnalyticsStore{},
		organization.NewMemoryStore(), ledger, analyticsCatalog(t),
		billing.WithAnalyticsLogger(discardLogger()))

	history, err := analytics.History(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, row := range history {
		assert.Equal(t, orgID, row.OrganizationID)
	}
}
