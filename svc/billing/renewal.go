package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agendahub/agendahub/pkg/logger"
	"github.com/agendahub/agendahub/pkg/pix"
	"github.com/agendahub/agendahub/svc/organization"
	"github.com/agendahub/agendahub/svc/plan"
	"github.com/agendahub/agendahub/svc/user"
)

// renewalWindow selects organizations whose plan expires within this span.
const renewalWindow = 72 * time.Hour

// RenewalJob is the daily scan that generates renewal charges for
// organizations about to expire. One failed organization never blocks the
// rest of the batch, and a failed attempt is retried naturally the next day
// because the organization still matches the selection window.
type RenewalJob struct {
	orgs     organization.Store
	users    user.Store
	catalog  *plan.Catalog
	gateway  PaymentGateway
	ledger   LedgerStore
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// RenewalOption configures the renewal job.
type RenewalOption func(*RenewalJob)

// WithRenewalLogger sets the job logger. Defaults to slog.Default().
func WithRenewalLogger(log *slog.Logger) RenewalOption {
	return func(j *RenewalJob) { j.log = log }
}

// WithRenewalClock overrides the time source. Tests only.
func WithRenewalClock(now func() time.Time) RenewalOption {
	return func(j *RenewalJob) { j.now = now }
}

// NewRenewalJob creates the renewal scan. All dependencies are required.
func NewRenewalJob(
	orgs organization.Store,
	users user.Store,
	catalog *plan.Catalog,
	gateway PaymentGateway,
	ledger LedgerStore,
	notifier Notifier,
	opts ...RenewalOption,
) *RenewalJob {
	if orgs == nil || users == nil || catalog == nil || gateway == nil || ledger == nil || notifier == nil {
		panic("billing: all renewal job dependencies are required")
	}

	j := &RenewalJob{
		orgs:     orgs,
		users:    users,
		catalog:  catalog,
		gateway:  gateway,
		ledger:   ledger,
		notifier: notifier,
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run scans for organizations expiring within the renewal window and creates
// a renewal charge for each, sequentially.
func (j *RenewalJob) Run(ctx context.Context) error {
	now := j.now()
	threshold := now.Add(renewalWindow)

	orgs, err := j.orgs.ExpiringBefore(ctx, threshold)
	if err != nil {
		return fmt.Errorf("select expiring organizations: %w", err)
	}

	j.log.InfoContext(ctx, "renewal scan started",
		slog.Int("candidates", len(orgs)),
		slog.Time("threshold", threshold),
	)

	renewed := 0
	for _, org := range orgs {
		if err := j.renew(ctx, org, now); err != nil {
			j.log.ErrorContext(ctx, "renewal attempt failed",
				logger.Error(err),
				logger.OrganizationID(org.ID.String()),
			)
			continue
		}
		renewed++
	}

	j.log.InfoContext(ctx, "renewal scan finished",
		slog.Int("candidates", len(orgs)),
		slog.Int("renewed", renewed),
	)
	return nil
}

func (j *RenewalJob) renew(ctx context.Context, org *organization.Organization, now time.Time) error {
	p, err := j.catalog.ByID(org.PlanID)
	if err != nil {
		j.log.WarnContext(ctx, "skipping renewal, plan not in catalog",
			logger.OrganizationID(org.ID.String()),
			logger.PlanID(org.PlanID),
		)
		return nil
	}

	contact, err := j.users.FirstInOrganization(ctx, org.ID)
	if err != nil {
		j.log.WarnContext(ctx, "skipping renewal, organization has no users",
			logger.OrganizationID(org.ID.String()),
		)
		return nil
	}

	orderID := fmt.Sprintf("renewal_%s_%d", org.ID, now.Unix())
	payment, err := j.gateway.CreatePayment(ctx, pix.CreatePaymentRequest{
		Amount:      p.Price.Amount,
		ExpiresIn:   int(renewalExpiry.Seconds()),
		Description: fmt.Sprintf("Renovação %s - %s (%s)", p.Name, org.Name, orderID),
		Customer: pix.Customer{
			Name:      contact.Name,
			Cellphone: contact.Cellphone,
			Email:     contact.Email,
			TaxID:     contact.TaxID,
		},
	})
	if err != nil {
		return fmt.Errorf("create renewal payment: %w", err)
	}

	// Overwrites any prior outstanding payment reference.
	org.PaymentID = payment.ID
	if err := j.orgs.Update(ctx, org); err != nil {
		return fmt.Errorf("store renewal payment id: %w", err)
	}

	sub := &Subscription{
		OrganizationID: org.ID,
		PlanID:         p.ID,
		Status:         StatusPending,
		PaymentID:      payment.ID,
		IsRenewal:      true,
		PaymentMethod:  "pix",
	}
	if err := j.ledger.Create(ctx, sub); err != nil {
		j.log.ErrorContext(ctx, "failed to record renewal attempt",
			logger.Error(err),
			logger.OrganizationID(org.ID.String()),
			logger.PaymentID(payment.ID),
		)
	}

	if org.PlanExpiresAt != nil {
		j.notifier.SubscriptionExpiring(ctx, org, p, *org.PlanExpiresAt)
	}

	j.log.InfoContext(ctx, "renewal charge created",
		logger.OrganizationID(org.ID.String()),
		logger.PaymentID(payment.ID),
		slog.String("order_id", orderID),
	)
	return nil
}
