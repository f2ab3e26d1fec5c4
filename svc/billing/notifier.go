package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agendahub/pkg/email"
	"github.com/agendahub/agendahub/pkg/logger"
	"github.com/agendahub/agendahub/svc/organization"
	"github.com/agendahub/agendahub/svc/plan"
	"github.com/agendahub/agendahub/svc/user"
)

// Notifier delivers best-effort lifecycle notifications. Implementations must
// never block the caller for long; errors are swallowed and logged by the
// caller, they never fail the triggering operation.
type Notifier interface {
	// PaymentSucceeded notifies the organization that its plan is now active.
	PaymentSucceeded(ctx context.Context, org *organization.Organization)
	// PaymentFailed notifies the organization that a payment did not go through.
	PaymentFailed(ctx context.Context, org *organization.Organization, reason string)
	// SubscriptionExpiring notifies that the plan expires soon and a renewal
	// charge is waiting for payment.
	SubscriptionExpiring(ctx context.Context, org *organization.Organization, p plan.Plan, expiresAt time.Time)
}

// EmailNotifier sends notifications to the organization's admins by email.
type EmailNotifier struct {
	sender email.EmailSender
	users  user.Store
	log    *slog.Logger
}

// NewEmailNotifier creates a notifier backed by the given sender. Recipients
// are the organization's admins, or the oldest member when no admin exists.
func NewEmailNotifier(sender email.EmailSender, users user.Store, log *slog.Logger) *EmailNotifier {
	if sender == nil {
		panic("billing: email sender is required")
	}
	if users == nil {
		panic("billing: user store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &EmailNotifier{sender: sender, users: users, log: log}
}

func (n *EmailNotifier) PaymentSucceeded(ctx context.Context, org *organization.Organization) {
	subject := fmt.Sprintf("Assinatura ativada: %s", org.Name)
	body := fmt.Sprintf("<p>O pagamento da assinatura de <strong>%s</strong> foi confirmado e o plano está ativo.</p>", org.Name)
	n.deliver(ctx, org, subject, body, "payment-succeeded")
}

func (n *EmailNotifier) PaymentFailed(ctx context.Context, org *organization.Organization, reason string) {
	subject := fmt.Sprintf("Falha no pagamento: %s", org.Name)
	body := fmt.Sprintf("<p>O pagamento da assinatura de <strong>%s</strong> não foi concluído (%s). Gere uma nova cobrança para manter o plano ativo.</p>", org.Name, reason)
	n.deliver(ctx, org, subject, body, "payment-failed")
}

func (n *EmailNotifier) SubscriptionExpiring(ctx context.Context, org *organization.Organization, p plan.Plan, expiresAt time.Time) {
	subject := fmt.Sprintf("Sua assinatura expira em breve: %s", org.Name)
	body := fmt.Sprintf(
		"<p>O plano <strong>%s</strong> de <strong>%s</strong> expira em %s. Uma cobrança PIX de renovação foi gerada; pague-a para manter o acesso.</p>",
		p.Name, org.Name, expiresAt.Format("02/01/2006"))
	n.deliver(ctx, org, subject, body, "subscription-expiring")
}

func (n *EmailNotifier) deliver(ctx context.Context, org *organization.Organization, subject, body, tag string) {
	for _, recipient := range n.recipients(ctx, org.ID) {
		err := n.sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   recipient.Email,
			Subject:  subject,
			BodyHTML: body,
			Tag:      tag,
		})
		if err != nil {
			n.log.WarnContext(ctx, "failed to send notification email",
				logger.Error(err),
				logger.OrganizationID(org.ID.String()),
				slog.String("tag", tag),
			)
		}
	}
}

// recipients resolves who gets notified: all admins, or the oldest member as
// a fallback so no organization goes silent.
func (n *EmailNotifier) recipients(ctx context.Context, orgID uuid.UUID) []*user.User {
	admins, err := n.users.AdminsInOrganization(ctx, orgID)
	if err == nil && len(admins) > 0 {
		return admins
	}

	first, err := n.users.FirstInOrganization(ctx, orgID)
	if err != nil {
		n.log.WarnContext(ctx, "no notification recipients for organization",
			logger.OrganizationID(orgID.String()))
		return nil
	}
	return []*user.User{first}
}

// LogNotifier writes lifecycle notifications to the log. Used in development
// and as a stand-in until email delivery is configured.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) PaymentSucceeded(ctx context.Context, org *organization.Organization) {
	n.log.InfoContext(ctx, "notification: payment succeeded",
		logger.OrganizationID(org.ID.String()))
}

func (n *LogNotifier) PaymentFailed(ctx context.Context, org *organization.Organization, reason string) {
	n.log.InfoContext(ctx, "notification: payment failed",
		logger.OrganizationID(org.ID.String()),
		slog.String("reason", reason))
}

func (n *LogNotifier) SubscriptionExpiring(ctx context.Context, org *organization.Organization, p plan.Plan, expiresAt time.Time) {
	n.log.InfoContext(ctx, "notification: subscription expiring",
		logger.OrganizationID(org.ID.String()),
		logger.PlanID(p.ID),
		slog.Time("expires_at", expiresAt))
}
