package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agendahub/svc/organization"
	"github.com/agendahub/agendahub/svc/plan"
)

// AnalyticsStore answers the aggregate queries behind the reporting surface.
type AnalyticsStore interface {
	CountOrganizations(ctx context.Context) (int64, error)
	CountActiveOrganizations(ctx context.Context) (int64, error)
	CountExpiringBefore(ctx context.Context, deadline time.Time) (int64, error)
	// CountRenewedSince counts renewal ledger rows that went active since the
	// given time.
	CountRenewedSince(ctx context.Context, since time.Time) (int64, error)
	// CountCancelledSince counts ledger rows cancelled since the given time.
	CountCancelledSince(ctx context.Context, since time.Time) (int64, error)
	// PlanIDsCreatedBetween returns the plan id of every ledger row created
	// in [from, to), one entry per row.
	PlanIDsCreatedBetween(ctx context.Context, from, to time.Time) ([]string, error)
	// ActivePlanIDs returns the plan id of every organization with an active
	// plan, one entry per organization.
	ActivePlanIDs(ctx context.Context) ([]string, error)
}

// Summary is the reporting snapshot served to superadmins.
type Summary struct {
	TotalOrganizations      int64      `json:"totalOrganizations"`
	ActiveOrganizations     int64      `json:"activeOrganizations"`
	ExpiringWithin7Days     int64      `json:"expiringWithin7Days"`
	RenewedLast30Days       int64      `json:"renewedLast30Days"`
	CancelledLast30Days     int64      `json:"cancelledLast30Days"`
	RevenueCurrentMonth     plan.Money `json:"revenueCurrentMonth"`
	RevenuePreviousMonth    plan.Money `json:"revenuePreviousMonth"`
	RevenueGrowthPercent    float64    `json:"revenueGrowthPercent"`
	MonthlyRecurringRevenue plan.Money `json:"monthlyRecurringRevenue"`
}

// Analytics serves read-only subscription reporting. All methods are pure
// reads with acceptable staleness; there is no caching layer.
type Analytics struct {
	store   AnalyticsStore
	orgs    organization.Store
	ledger  LedgerStore
	catalog *plan.Catalog
	log     *slog.Logger
	now     func() time.Time
}

// AnalyticsOption configures the analytics reader.
type AnalyticsOption func(*Analytics)

// WithAnalyticsLogger sets the logger. Defaults to slog.Default().
func WithAnalyticsLogger(log *slog.Logger) AnalyticsOption {
	return func(a *Analytics) { a.log = log }
}

// WithAnalyticsClock overrides the time source. Tests only.
func WithAnalyticsClock(now func() time.Time) AnalyticsOption {
	return func(a *Analytics) { a.now = now }
}

// NewAnalytics creates the reporting reader.
func NewAnalytics(
	store AnalyticsStore,
	orgs organization.Store,
	ledger LedgerStore,
	catalog *plan.Catalog,
	opts ...AnalyticsOption,
) *Analytics {
	if store == nil || orgs == nil || ledger == nil || catalog == nil {
		panic("billing: all analytics dependencies are required")
	}

	a := &Analytics{
		store:   store,
		orgs:    orgs,
		ledger:  ledger,
		catalog: catalog,
		log:     slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summary aggregates organization counts, churn counts and revenue for the
// current and previous calendar month.
func (a *Analytics) Summary(ctx context.Context) (*Summary, error) {
	now := a.now()

	total, err := a.store.CountOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("count organizations: %w", err)
	}
	active, err := a.store.CountActiveOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("count active organizations: %w", err)
	}
	expiring, err := a.store.CountExpiringBefore(ctx, now.Add(7*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("count expiring organizations: %w", err)
	}
	renewed, err := a.store.CountRenewedSince(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("count renewed subscriptions: %w", err)
	}
	cancelled, err := a.store.CountCancelledSince(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("count cancelled subscriptions: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	current, err := a.revenueBetween(ctx, monthStart, now)
	if err != nil {
		return nil, err
	}
	previous, err := a.revenueBetween(ctx, prevMonthStart, monthStart)
	if err != nil {
		return nil, err
	}

	activePlanIDs, err := a.store.ActivePlanIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active plan ids: %w", err)
	}
	mrr := a.sumPlanPrices(activePlanIDs)

	return &Summary{
		TotalOrganizations:      total,
		ActiveOrganizations:     active,
		ExpiringWithin7Days:     expiring,
		RenewedLast30Days:       renewed,
		CancelledLast30Days:     cancelled,
		RevenueCurrentMonth:     current,
		RevenuePreviousMonth:    previous,
		RevenueGrowthPercent:    growthPercent(previous.Amount, current.Amount),
		MonthlyRecurringRevenue: mrr,
	}, nil
}

// ExpiringWithin lists organizations whose plan expires within the given
// number of days, soonest first.
func (a *Analytics) ExpiringWithin(ctx context.Context, days int) ([]*organization.Organization, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}
	deadline := a.now().Add(time.Duration(days) * 24 * time.Hour)
	return a.orgs.ExpiringBefore(ctx, deadline)
}

// History returns an organization's full subscription ledger, newest first.
func (a *Analytics) History(ctx context.Context, orgID uuid.UUID) ([]*Subscription, error) {
	return a.ledger.History(ctx, orgID)
}

func (a *Analytics) revenueBetween(ctx context.Context, from, to time.Time) (plan.Money, error) {
	planIDs, err := a.store.PlanIDsCreatedBetween(ctx, from, to)
	if err != nil {
		return plan.Money{}, fmt.Errorf("list plan ids created between %s and %s: %w", from, to, err)
	}
	return a.sumPlanPrices(planIDs), nil
}

// sumPlanPrices totals the catalog price of each plan id. Ids missing from
// the catalog contribute nothing; they belong to removed plans.
func (a *Analytics) sumPlanPrices(planIDs []string) plan.Money {
	total := plan.Money{Currency: "BRL"}
	for _, id := range planIDs {
		p, err := a.catalog.ByID(id)
		if err != nil {
			continue
		}
		total.Amount += p.Price.Amount
		if p.Price.Currency != "" {
			total.Currency = p.Price.Currency
		}
	}
	return total
}

func growthPercent(previous, current int64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (float64(current-previous) / float64(previous)) * 100
}
