package billing_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/agendahub/pkg/pix"
	"github.com/agendahub/agendahub/svc/billing"
	"github.com/agendahub/agendahub/svc/organization"
	"github.com/agendahub/agendahub/svc/plan"
	"github.com/agendahub/agendahub/svc/user"
)

// fakeGateway returns canned payments or a canned error, and records every
// request it receives.
type fakeGateway struct {
	requests []pix.CreatePaymentRequest
	nextID   int
	err      error
}

func (g *fakeGateway) CreatePayment(_ context.Context, req pix.CreatePaymentRequest) (*pix.Payment, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	g.nextID++
	return &pix.Payment{
		ID:     fmt.Sprintf("pix_%d", g.nextID),
		Amount: req.Amount,
		Status: pix.StatusPending,
		BRCode: "00020126brcode",
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	orgs    *organization.MemoryStore
	users   *user.MemoryStore
	catalog *plan.Catalog
	gateway *fakeGateway
	ledger  *billing.MemoryLedgerStore
	svc     billing.Service

	org  *organization.Organization
	user *user.User
}

func newFixture(t *testing.T, opts ...billing.Option) *fixture {
	t.Helper()

	org := &organization.Organization{
		ID:      uuid.New(),
		Name:    "Studio Bela",
		Slug:    "studio-bela",
		Enabled: true,
	}
	member := &user.User{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Name:           "Ana Souza",
		Email:          "ana@example.com",
		Cellphone:      "+5511999990000",
		TaxID:          "12345678901",
		Role:           user.RoleAdmin,
		CreatedAt:      time.Now().UTC(),
	}

	catalog, err := plan.NewCatalog(context.Background(), plan.NewMemorySource(plan.Plan{
		ID:       "p1",
		Name:     "Starter",
		Price:    plan.Money{Amount: 5999, Currency: "BRL"},
		Interval: plan.IntervalMonth,
	}))
	require.NoError(t, err)

	f := &fixture{
		orgs:    organization.NewMemoryStore(org),
		users:   user.NewMemoryStore(member),
		catalog: catalog,
		gateway: &fakeGateway{},
		ledger:  billing.NewMemoryLedgerStore(),
		org:     org,
		user:    member,
	}
	opts = append([]billing.Option{billing.WithLogger(discardLogger())}, opts...)
	f.svc = billing.NewService(f.orgs, f.users, f.catalog, f.gateway, f.ledger,
		billing.NewLogNotifier(discardLogger()), opts...)
	return f
}

func TestCreateSubscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("attaches plan and payment id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		checkout, err := f.svc.CreateSubscription(ctx, "p1", f.org.ID, f.user.ID)
		require.NoError(t, err)
		require.NotNil(t, checkout.Payment)
		assert.Equal(t, "pix_1", checkout.Payment.ID)
		assert.Equal(t, "p1", checkout.Plan.ID)

		stored, err := f.orgs.ByID(ctx, f.org.ID)
		require.NoError(t, err)
		assert.Equal(t, "p1", stored.PlanID)
		assert.False(t, stored.IsPlanActive)
		assert.Equal(t, "pix_1", stored.PaymentID)

		// The charge carries the plan price in centavos and the payer's details.
		require.Len(t, f.gateway.requests, 1)
		assert.Equal(t, int64(5999), f.gateway.requests[0].Amount)
		assert.Equal(t, 3600, f.gateway.requests[0].ExpiresIn)
		assert.Equal(t, "12345678901", f.gateway.requests[0].Customer.TaxID)

		rows := f.ledger.All()
		require.Len(t, rows, 1)
		assert.Equal(t, billing.StatusPending, rows[0].Status)
		assert.Equal(t, "pix_1", rows[0].PaymentID)
		assert.False(t, rows[0].IsRenewal)
	})

	t.Run("unknown organization", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.svc.CreateSubscription(ctx, "p1", uuid.New(), f.user.ID)
		require.ErrorIs(t, err, billing.ErrOrganizationNotFound)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.svc.CreateSubscription(ctx, "p99", f.org.ID, f.user.ID)
		require.ErrorIs(t, err, billing.ErrPlanNotFound)
	})

	t.Run("user from another organization", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		outsider := &user.User{
			ID:             uuid.New(),
			OrganizationID: uuid.New(),
			Name:           "Bruno Lima",
			Email:          "bruno@example.com",
			Cellphone:      "+5511888880000",
			TaxID:          "98765432100",
		}
		f2 := user.NewMemoryStore(f.user, outsider)
		svc := billing.NewService(f.orgs, f2, f.catalog, f.gateway, f.ledger,
			billing.NewLogNotifier(discardLogger()), billing.WithLogger(discardLogger()))

		_, err := svc.CreateSubscription(ctx, "p1", f.org.ID, outsider.ID)
		require.ErrorIs(t, err, billing.ErrUserNotInOrganization)

		// The organization must not have been touched.
		stored, err := f.orgs.ByID(ctx, f.org.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.PlanID)
		assert.Empty(t, stored.PaymentID)
		assert.Empty(t, f.gateway.requests)
	})

	t.Run("missing contact info", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		incomplete := &user.User{
			ID:             uuid.New(),
			OrganizationID: f.org.ID,
			Name:           "Sem CPF",
			Email:          "sem@example.com",
			Cellphone:      "+5511777770000",
		}
		users := user.NewMemoryStore(incomplete)
		svc := billing.NewService(f.orgs, users, f.catalog, f.gateway, f.ledger,
			billing.NewLogNotifier(discardLogger()), billing.WithLogger(discardLogger()))

		_, err := svc.CreateSubscription(ctx, "p1", f.org.ID, incomplete.ID)
		require.ErrorIs(t, err, billing.ErrMissingContactInfo)
		assert.Empty(t, f.gateway.requests)
	})

	t.Run("gateway failure leaves plan attached without payment id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.gateway.err = errors.New("provider down")

		_, err := f.svc.CreateSubscription(ctx, "p1", f.org.ID, f.user.ID)
		require.ErrorIs(t, err, billing.ErrPaymentGateway)

		// First write landed, second never happened. Accepted partial state;
		// the next successful checkout overwrites it.
		stored, err := f.orgs.ByID(ctx, f.org.ID)
		require.NoError(t, err)
		assert.Equal(t, "p1", stored.PlanID)
		assert.False(t, stored.IsPlanActive)
		assert.Empty(t, stored.PaymentID)
	})
}

func TestUpdateSubscriptionStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	checkout := func(t *testing.T, f *fixture) string {
		t.Helper()
		co, err := f.svc.CreateSubscription(ctx, "p1", f.org.ID, f.user.ID)
		require.NoError(t, err)
		return co.Payment.ID
	}

	t.Run("completed activates the plan for one month", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		paymentID := checkout(t, f)

		before := time.Now().UTC()
		res, err := f.svc.UpdateSubscriptionStatus(ctx, billing.WebhookUpdate{
			PaymentID: paymentID, Status: "completed",
		})
		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeActivated, res.Outcome)

		stored, err := f.orgs.ByID(ctx, f.org.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsPlanActive)
		require.NotNil(t, stored.PlanExpiresAt)
		assert.WithinDuration(t, before.AddDate(0, 1, 0), *stored.PlanExpiresAt, time.Minute)

		rows := f.ledger.All()
		require.Len(t, rows, 1)
		assert.Equal(t, billing.StatusActive, rows[0].Status)
		// The activated ledger row records the expiry it granted.
		require.NotNil(t, rows[0].ExpiresAt)
		assert.Equal(t, *stored.PlanExpiresAt, *rows[0].ExpiresAt)
	})

	t.Run("approved activates too", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		paymentID := checkout(t, f)

		res, err := f.svc.UpdateSubscriptionStatus(ctx, billing.WebhookUpdate{
			PaymentID: paymentID, Status: "approved",
		})
		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeActivated, res.Outcome)
		assert.True(t, res.Organization.IsPlanActive)
	})

	t.Run("failed leaves the organization untouched", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		paymentID := checkout(t, f)

		res, err := f.svc.UpdateSubscriptionStatus(ctx, billing.WebhookUpdate{
			PaymentID: paymentID, Status: "failed",
		})
		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeFailed, res.Outcome)

		stored, err := f.orgs.ByID(ctx, f.org.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsPlanActive)
		assert.Nil(t, stored.PlanExpiresAt)

		rows := f.ledger.All()
		require.Len(t, rows, 1)
		assert.Equal(t, billing.StatusCancelled, rows[0].Status)
		assert.Equal(t, "failed", rows[0].CancelReason)
		assert.Nil(t, rows[0].ExpiresAt)
	})

	t.Run("unknown status is a no-op echo", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		paymentID := checkout(t, f)

		res, err := f.svc.UpdateSubscriptionStatus(ctx, billing.WebhookUpdate{
			PaymentID: paymentID, Status: "processing",
		})
		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeIgnored, res.Outcome)
		assert.False(t, res.Organization.IsPlanActive)

		rows := f.ledger.All()
		require.Len(t, rows, 1)
		assert.Equal(t, billing.StatusPending, rows[0].Status)
	})

	t.Run("unknown payment id drops the webhook", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		checkout(t, f)

		_, err := f.svc.UpdateSubscriptionStatus(ctx, billing.WebhookUpdate{
			PaymentID: "pix_unknown", Status: "completed",
		})
		require.ErrorIs(t, err, billing.ErrPaymentNotFound)

		stored, err := f.orgs.ByID(ctx, f.org.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsPlanActive)
	})

	// Duplicate deliveries re-extend the expiry. This pins the current
	// behavior so adding dedup later is a deliberate change.
	t.Run("duplicate completed webhook extends expiry again", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		f := newFixture(t, billing.WithClock(func() time.Time { return now }))
		paymentID := checkout(t, f)

		_, err := f.svc.UpdateSubscriptionStatus(ctx, billing.WebhookUpdate{
			PaymentID: paymentID, Status: "completed",
		})
		require.NoError(t, err)

		first, err := f.orgs.ByID(ctx, f.org.ID)
		require.NoError(t, err)
		require.NotNil(t, first.PlanExpiresAt)
		assert.Equal(t, now.AddDate(0, 1, 0), *first.PlanExpiresAt)

		// Same event again, a week later.
		now = now.Add(7 * 24 * time.Hour)
		_, err = f.svc.UpdateSubscriptionStatus(ctx, billing.WebhookUpdate{
			PaymentID: paymentID, Status: "completed",
		})
		require.NoError(t, err)

		second, err := f.orgs.ByID(ctx, f.org.ID)
		require.NoError(t, err)
		require.NotNil(t, second.PlanExpiresAt)
		assert.Equal(t, now.AddDate(0, 1, 0), *second.PlanExpiresAt)
		assert.True(t, second.PlanExpiresAt.After(*first.PlanExpiresAt))
	})
}

func TestGetSubscriptionStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns organization and plan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.svc.CreateSubscription(ctx, "p1", f.org.ID, f.user.ID)
		require.NoError(t, err)

		summary, err := f.svc.GetSubscriptionStatus(ctx, f.org.ID)
		require.NoError(t, err)
		assert.Equal(t, f.org.ID, summary.Organization.ID)
		require.NotNil(t, summary.Plan)
		assert.Equal(t, "p1", summary.Plan.ID)
	})

	t.Run("organization without plan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		summary, err := f.svc.GetSubscriptionStatus(ctx, f.org.ID)
		require.NoError(t, err)
		assert.Nil(t, summary.Plan)
		assert.False(t, summary.Organization.IsPlanActive)
	})

	t.Run("unknown organization", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.svc.GetSubscriptionStatus(ctx, uuid.New())
		require.ErrorIs(t, err, billing.ErrOrganizationNotFound)
	})
}
