package billing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	module "github.com/agendahub/agendahub/modules/billing"
	"github.com/agendahub/agendahub/pkg/pix"
	"github.com/agendahub/agendahub/svc/billing"
	"github.com/agendahub/agendahub/svc/organization"
	"github.com/agendahub/agendahub/svc/plan"
	"github.com/agendahub/agendahub/svc/user"
)

type stubGateway struct {
	nextID int
}

func (g *stubGateway) CreatePayment(_ context.Context, req pix.CreatePaymentRequest) (*pix.Payment, error) {
	g.nextID++
	return &pix.Payment{
		ID:     fmt.Sprintf("pix_%d", g.nextID),
		Amount: req.Amount,
		Status: pix.StatusPending,
		BRCode: "00020126brcode",
	}, nil
}

type testAPI struct {
	router http.Handler
	org    *organization.Organization
	member *user.User
	super  *user.User
	orgs   *organization.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	org := &organization.Organization{
		ID: uuid.New(), Name: "Studio Bela", Slug: "studio-bela", Enabled: true,
	}
	member := &user.User{
		ID: uuid.New(), OrganizationID: org.ID,
		Name: "Ana Souza", Email: "ana@example.com",
		Cellphone: "+5511999990000", TaxID: "12345678901",
		Role: user.RoleAdmin, APIToken: "tok_member",
		CreatedAt: time.Now().UTC(),
	}
	super := &user.User{
		ID: uuid.New(), OrganizationID: uuid.New(),
		Name: "Root", Email: "root@example.com",
		Cellphone: "+5511000000000", TaxID: "00000000000",
		Role: user.RoleSuperadmin, APIToken: "tok_super",
		CreatedAt: time.Now().UTC(),
	}

	catalog, err := plan.NewCatalog(context.Background(), plan.NewMemorySource(plan.Plan{
		ID: "p1", Name: "Starter", Price: plan.Money{Amount: 5999, Currency: "BRL"},
		Interval: plan.IntervalMonth,
	}))
	require.NoError(t, err)

	orgs := organization.NewMemoryStore(org)
	users := user.NewMemoryStore(member, super)
	ledger := billing.NewMemoryLedgerStore()
	svc := billing.NewService(orgs, users, catalog, &stubGateway{}, ledger,
		billing.NewLogNotifier(log), billing.WithLogger(log))
	analytics := billing.NewAnalytics(billing.NewMemoryAnalyticsStore(orgs, ledger), orgs, ledger, catalog,
		billing.WithAnalyticsLogger(log))

	router := module.Router(module.RouterOptions{
		Service:   svc,
		Analytics: analytics,
		Users:     users,
	})

	return &testAPI{router: router, org: org, member: member, super: super, orgs: orgs}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func TestCreateSubscriptionEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/subscriptions/", "tok_member", map[string]any{
			"planId":         "p1",
			"organizationId": api.org.ID,
			"userId":         api.member.ID,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var checkout billing.PaymentCheckout
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &checkout))
		assert.Equal(t, "pix_1", checkout.Payment.ID)
		assert.Equal(t, "p1", checkout.Plan.ID)
		assert.False(t, checkout.Organization.IsPlanActive)
	})

	t.Run("requires auth", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/subscriptions/", "", map[string]any{
			"planId": "p1", "organizationId": api.org.ID, "userId": api.member.ID,
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("cross-tenant subscribe is forbidden", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/subscriptions/", "tok_member", map[string]any{
			"planId": "p1", "organizationId": uuid.New(), "userId": api.member.ID,
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown plan is 404", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/subscriptions/", "tok_member", map[string]any{
			"planId": "p99", "organizationId": api.org.ID, "userId": api.member.ID,
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing fields is 400", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/subscriptions/", "tok_member", map[string]any{
			"planId": "p1",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestWebhookEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("activates on completed", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/subscriptions/", "tok_member", map[string]any{
			"planId": "p1", "organizationId": api.org.ID, "userId": api.member.ID,
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		// Unauthenticated, as the provider delivers it.
		rr = api.do(t, http.MethodPost, "/subscriptions/webhook", "", map[string]any{
			"paymentId": "pix_1", "status": "completed",
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var result billing.WebhookResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, billing.OutcomeActivated, result.Outcome)
		assert.True(t, result.Organization.IsPlanActive)
	})

	t.Run("unknown payment id is 404", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/subscriptions/webhook", "", map[string]any{
			"paymentId": "pix_unknown", "status": "completed",
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing fields is 400", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/subscriptions/webhook", "", map[string]any{
			"paymentId": "pix_1",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSubscriptionStatusEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("own organization", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodGet, "/subscriptions/"+api.org.ID.String(), "tok_member", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var summary billing.StatusSummary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
		assert.Equal(t, api.org.ID, summary.Organization.ID)
	})

	t.Run("foreign organization is forbidden", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodGet, "/subscriptions/"+uuid.NewString(), "tok_member", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("superadmin reads any organization", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodGet, "/subscriptions/"+api.org.ID.String(), "tok_super", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("invalid uuid is 400", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodGet, "/subscriptions/not-a-uuid", "tok_member", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAnalyticsEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("summary requires superadmin", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodGet, "/subscription-analytics/summary", "tok_member", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = api.do(t, http.MethodGet, "/subscription-analytics/summary", "tok_super", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("expiring validates days", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodGet, "/subscription-analytics/expiring/abc", "tok_super", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = api.do(t, http.MethodGet, "/subscription-analytics/expiring/7", "tok_super", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("history returns the ledger", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/subscriptions/", "tok_member", map[string]any{
			"planId": "p1", "organizationId": api.org.ID, "userId": api.member.ID,
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = api.do(t, http.MethodGet, "/subscription-analytics/history/"+api.org.ID.String(), "tok_super", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var history []billing.Subscription
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
		require.Len(t, history, 1)
		assert.Equal(t, api.org.ID, history[0].OrganizationID)
	})
}
