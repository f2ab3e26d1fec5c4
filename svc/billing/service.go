package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agendahub/pkg/logger"
	"github.com/agendahub/agendahub/pkg/pix"
	"github.com/agendahub/agendahub/svc/organization"
	"github.com/agendahub/agendahub/svc/plan"
	"github.com/agendahub/agendahub/svc/user"
)

const (
	// checkoutExpiry is how long a manually created PIX charge stays payable.
	checkoutExpiry = time.Hour
	// renewalExpiry is how long a renewal PIX charge stays payable.
	renewalExpiry = 72 * time.Hour
)

// Service orchestrates subscription creation, webhook-driven status
// transitions and subscription reads.
type Service interface {
	CreateSubscription(ctx context.Context, planID string, orgID, userID uuid.UUID) (*PaymentCheckout, error)
	UpdateSubscriptionStatus(ctx context.Context, update WebhookUpdate) (*WebhookResult, error)
	GetSubscriptionStatus(ctx context.Context, orgID uuid.UUID) (*StatusSummary, error)
}

type service struct {
	orgs     organization.Store
	users    user.Store
	catalog  *plan.Catalog
	gateway  PaymentGateway
	ledger   LedgerStore
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// Option configures the billing service.
type Option func(*service)

// WithLogger sets the service logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *service) { s.log = log }
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates the billing service. All dependencies are required.
func NewService(
	orgs organization.Store,
	users user.Store,
	catalog *plan.Catalog,
	gateway PaymentGateway,
	ledger LedgerStore,
	notifier Notifier,
	opts ...Option,
) Service {
	if orgs == nil || users == nil || catalog == nil || gateway == nil || ledger == nil || notifier == nil {
		panic("billing: all service dependencies are required")
	}

	s := &service{
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
		opt(s)
	}
	return s
}

// CreateSubscription attaches the plan to the organization, creates a PIX
// charge for the acting user and records the attempt in the ledger.
//
// The plan attach and the payment id attach are two separate writes. A crash
// between them leaves the organization with a plan, an inactive flag and no
// payment id; the next successful checkout overwrites that state.
func (s *service) CreateSubscription(ctx context.Context, planID string, orgID, userID uuid.UUID) (*PaymentCheckout, error) {
	org, err := s.orgs.ByID(ctx, orgID)
	if err != nil {
		return nil, errors.Join(ErrOrganizationNotFound, err)
	}

	p, err := s.catalog.ByID(planID)
	if err != nil {
		return nil, errors.Join(ErrPlanNotFound, err)
	}

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrUserNotFound, err)
	}
	if !u.BelongsTo(orgID) {
		return nil, ErrUserNotInOrganization
	}
	if !u.HasContactInfo() {
		return nil, ErrMissingContactInfo
	}

	// First write: attach the plan, pending payment.
	org.PlanID = p.ID
	org.IsPlanActive = false
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("attach plan to organization: %w", err)
	}

	payment, err := s.gateway.CreatePayment(ctx, pix.CreatePaymentRequest{
		Amount:      p.Price.Amount,
		ExpiresIn:   int(checkoutExpiry.Seconds()),
		Description: fmt.Sprintf("Assinatura %s - %s", p.Name, org.Name),
		Customer: pix.Customer{
			Name:      u.Name,
			Cellphone: u.Cellphone,
			Email:     u.Email,
			TaxID:     u.TaxID,
		},
	})
	if err != nil {
		return nil, errors.Join(ErrPaymentGateway, err)
	}

	// Second write: correlate the charge with the organization.
	org.PaymentID = payment.ID
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("attach payment id to organization: %w", err)
	}

	sub := &Subscription{
		OrganizationID: org.ID,
		PlanID:         p.ID,
		Status:         StatusPending,
		PaymentID:      payment.ID,
		PaymentMethod:  "pix",
	}
	if err := s.ledger.Create(ctx, sub); err != nil {
		// The checkout is already live; the ledger row is bookkeeping.
		s.log.ErrorContext(ctx, "failed to record subscription attempt",
			logger.Error(err),
			logger.OrganizationID(org.ID.String()),
			logger.PaymentID(payment.ID),
		)
	}

	s.log.InfoContext(ctx, "subscription checkout created",
		logger.OrganizationID(org.ID.String()),
		logger.PlanID(p.ID),
		logger.PaymentID(payment.ID),
	)

	return &PaymentCheckout{
		Payment:      payment,
		Plan:         p,
		Organization: summarize(org),
	}, nil
}

// UpdateSubscriptionStatus applies a payment-provider webhook. Success
// statuses activate the plan for one month from now; failure statuses record
// the failed attempt without touching organization state; anything else is a
// no-op echo of the current state.
//
// Redelivering a success webhook re-extends the expiry by another month.
// There is no dedup; see the regression tests before changing this.
func (s *service) UpdateSubscriptionStatus(ctx context.Context, update WebhookUpdate) (*WebhookResult, error) {
	org, err := s.orgs.ByPaymentID(ctx, update.PaymentID)
	if err != nil {
		return nil, errors.Join(ErrPaymentNotFound, err)
	}

	switch {
	case successStatuses[update.Status]:
		expiresAt := s.now().AddDate(0, 1, 0)
		org.IsPlanActive = true
		org.PlanExpiresAt = &expiresAt
		if err := s.orgs.Update(ctx, org); err != nil {
			return nil, fmt.Errorf("activate organization plan: %w", err)
		}

		if err := s.ledger.UpdateStatusByPaymentID(ctx, update.PaymentID, StatusActive, "", &expiresAt); err != nil {
			s.log.WarnContext(ctx, "failed to update subscription ledger",
				logger.Error(err), logger.PaymentID(update.PaymentID))
		}

		s.notifier.PaymentSucceeded(ctx, org)
		s.log.InfoContext(ctx, "subscription activated",
			logger.OrganizationID(org.ID.String()),
			logger.PaymentID(update.PaymentID),
			slog.Time("plan_expires_at", expiresAt),
		)
		return &WebhookResult{Outcome: OutcomeActivated, Organization: summarize(org)}, nil

	case failureStatuses[update.Status]:
		// Activation never happened, so there is nothing to roll back.
		if err := s.ledger.UpdateStatusByPaymentID(ctx, update.PaymentID, StatusCancelled, update.Status, nil); err != nil {
			s.log.WarnContext(ctx, "failed to update subscription ledger",
				logger.Error(err), logger.PaymentID(update.PaymentID))
		}

		s.notifier.PaymentFailed(ctx, org, update.Status)
		s.log.InfoContext(ctx, "subscription payment failed",
			logger.OrganizationID(org.ID.String()),
			logger.PaymentID(update.PaymentID),
			slog.String("status", update.Status),
		)
		return &WebhookResult{Outcome: OutcomeFailed, Organization: summarize(org)}, nil

	default:
		s.log.DebugContext(ctx, "ignoring webhook status",
			logger.PaymentID(update.PaymentID),
			slog.String("status", update.Status),
		)
		return &WebhookResult{Outcome: OutcomeIgnored, Organization: summarize(org)}, nil
	}
}

// GetSubscriptionStatus returns the organization's current subscription
// state together with the attached plan, when any.
func (s *service) GetSubscriptionStatus(ctx context.Context, orgID uuid.UUID) (*StatusSummary, error) {
	org, err := s.orgs.ByID(ctx, orgID)
	if err != nil {
		return nil, errors.Join(ErrOrganizationNotFound, err)
	}

	summary := &StatusSummary{Organization: summarize(org)}
	if org.PlanID != "" {
		if p, err := s.catalog.ByID(org.PlanID); err == nil {
			summary.Plan = &p
		}
	}
	return summary, nil
}

func summarize(org *organization.Organization) OrganizationSummary {
	return OrganizationSummary{
		ID:            org.ID,
		Name:          org.Name,
		PlanID:        org.PlanID,
		IsPlanActive:  org.IsPlanActive,
		PlanExpiresAt: org.PlanExpiresAt,
		PaymentID:     org.PaymentID,
	}
}
