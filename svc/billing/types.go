package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agendahub/pkg/pix"
	"github.com/agendahub/agendahub/svc/plan"
)

// WebhookUpdate is the payload the payment provider delivers when a payment
// changes state.
type WebhookUpdate struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

// Provider statuses the webhook handler acts on. Any other status is echoed
// back without touching state.
var (
	successStatuses = map[string]bool{
		"completed": true,
		"approved":  true,
		"succeeded": true,
	}
	failureStatuses = map[string]bool{
		"failed":   true,
		"canceled": true,
		"rejected": true,
	}
)

// WebhookOutcome describes what the handler did with a webhook delivery.
type WebhookOutcome string

const (
	OutcomeActivated WebhookOutcome = "activated"
	OutcomeFailed    WebhookOutcome = "payment_failed"
	OutcomeIgnored   WebhookOutcome = "ignored"
)

// OrganizationSummary is the subscription-facing projection of an
// organization returned by the HTTP surface.
type OrganizationSummary struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	PlanID        string     `json:"planId,omitempty"`
	IsPlanActive  bool       `json:"isPlanActive"`
	PlanExpiresAt *time.Time `json:"planExpiresAt,omitempty"`
	PaymentID     string     `json:"paymentId,omitempty"`
}

// PaymentCheckout is returned by CreateSubscription: the PIX charge to
// present to the payer plus the plan and organization it is for.
type PaymentCheckout struct {
	Payment      *pix.Payment        `json:"payment"`
	Plan         plan.Plan           `json:"plan"`
	Organization OrganizationSummary `json:"organization"`
}

// StatusSummary is the read-side view of an organization's subscription.
type StatusSummary struct {
	Organization OrganizationSummary `json:"organization"`
	Plan         *plan.Plan          `json:"plan,omitempty"`
}

// WebhookResult reports the effect of a processed webhook.
type WebhookResult struct {
	Outcome      WebhookOutcome      `json:"outcome"`
	Organization OrganizationSummary `json:"organization"`
}
