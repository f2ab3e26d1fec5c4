package organization_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/agendahub/svc/organization"
)

func ptr[T any](v T) *T { return &v }

func TestExpiresWithin(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("nil expiry never matches", func(t *testing.T) {
		t.Parallel()

		org := &organization.Organization{IsPlanActive: false}
		assert.False(t, org.ExpiresWithin(now.Add(72*time.Hour)))
	})

	t.Run("expiry inside window", func(t *testing.T) {
		t.Parallel()

		org := &organization.Organization{
			IsPlanActive:  true,
			PlanExpiresAt: ptr(now.Add(24 * time.Hour)),
		}
		assert.True(t, org.ExpiresWithin(now.Add(72*time.Hour)))
	})

	t.Run("expiry outside window", func(t *testing.T) {
		t.Parallel()

		org := &organization.Organization{
			IsPlanActive:  true,
			PlanExpiresAt: ptr(now.Add(96 * time.Hour)),
		}
		assert.False(t, org.ExpiresWithin(now.Add(72*time.Hour)))
	})
}

func TestMemoryStoreUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("bumps version", func(t *testing.T) {
		t.Parallel()

		org := &organization.Organization{ID: uuid.New(), Name: "Studio Bela", Enabled: true}
		store := organization.NewMemoryStore(org)

		loaded, err := store.ByID(ctx, org.ID)
		require.NoError(t, err)

		loaded.Name = "Studio Bela Vista"
		require.NoError(t, store.Update(ctx, loaded))
		assert.Equal(t, int64(1), loaded.Version)

		again, err := store.ByID(ctx, org.ID)
		require.NoError(t, err)
		assert.Equal(t, "Studio Bela Vista", again.Name)
	})

	t.Run("rejects stale writes", func(t *testing.T) {
		t.Parallel()

		org := &organization.Organization{ID: uuid.New(), Enabled: true}
		store := organization.NewMemoryStore(org)

		first, err := store.ByID(ctx, org.ID)
		require.NoError(t, err)
		second, err := store.ByID(ctx, org.ID)
		require.NoError(t, err)

		require.NoError(t, store.Update(ctx, first))
		err = store.Update(ctx, second)
		require.ErrorIs(t, err, organization.ErrStaleOrganization)
	})

	t.Run("unknown organization", func(t *testing.T) {
		t.Parallel()

		store := organization.NewMemoryStore()
		err := store.Update(ctx, &organization.Organization{ID: uuid.New()})
		require.ErrorIs(t, err, organization.ErrOrganizationNotFound)
	})
}

func TestMemoryStoreByPaymentID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	org := &organization.Organization{ID: uuid.New(), PaymentID: "pix_123"}
	store := organization.NewMemoryStore(org)

	found, err := store.ByPaymentID(ctx, "pix_123")
	require.NoError(t, err)
	assert.Equal(t, org.ID, found.ID)

	_, err = store.ByPaymentID(ctx, "pix_999")
	require.ErrorIs(t, err, organization.ErrOrganizationNotFound)
}

func TestMemoryStoreExpiringBefore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	soon := &organization.Organization{
		ID: uuid.New(), Enabled: true, IsPlanActive: true,
		PlanExpiresAt: ptr(now.Add(12 * time.Hour)),
	}
	later := &organization.Organization{
		ID: uuid.New(), Enabled: true, IsPlanActive: true,
		PlanExpiresAt: ptr(now.Add(48 * time.Hour)),
	}
	outside := &organization.Organization{
		ID: uuid.New(), Enabled: true, IsPlanActive: true,
		PlanExpiresAt: ptr(now.Add(200 * time.Hour)),
	}
	disabled := &organization.Organization{
		ID: uuid.New(), Enabled: false, IsPlanActive: true,
		PlanExpiresAt: ptr(now.Add(time.Hour)),
	}
	inactive := &organization.Organization{
		ID: uuid.New(), Enabled: true, IsPlanActive: false,
		PlanExpiresAt: ptr(now.Add(time.Hour)),
	}

	store := organization.NewMemoryStore(soon, later, outside, disabled, inactive)

	got, err := store.ExpiringBefore(ctx, now.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, soon.ID, got[0].ID)
	assert.Equal(t, later.ID, got[1].ID)
}
