package billing

import (
	"github.com/go-chi/chi/v5"

	"github.com/agendahub/agendahub/pkg/ratelimiter"
	"github.com/agendahub/agendahub/svc/auth"
	"github.com/agendahub/agendahub/svc/billing"
	"github.com/agendahub/agendahub/svc/user"
)

// RouterOptions carries the dependencies of the subscription HTTP surface.
type RouterOptions struct {
	Service   billing.Service
	Analytics *billing.Analytics
	Users     user.Store
	// WebhookLimiter guards the unauthenticated webhook endpoint. Optional;
	// without it the endpoint is unthrottled.
	WebhookLimiter *ratelimiter.Bucket
}

// Router mounts the subscription and analytics endpoints.
//
//	r.Mount("/api", billing.Router(billing.RouterOptions{...}))
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil || opts.Analytics == nil || opts.Users == nil {
		panic("billing: router requires service, analytics and user store")
	}

	h := &handler{svc: opts.Service, analytics: opts.Analytics}
	authenticate := auth.Middleware(opts.Users)

	r := chi.NewRouter()

	r.Route("/subscriptions", func(r chi.Router) {
		// The provider calls the webhook without credentials; a rate limiter
		// stands in for authentication on this endpoint.
		r.Group(func(r chi.Router) {
			if opts.WebhookLimiter != nil {
				r.Use(ratelimiter.Middleware(opts.WebhookLimiter, ratelimiter.ByRealIP()))
			}
			r.Post("/webhook", h.webhook)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.createSubscription)
			r.Get("/{organizationID}", h.subscriptionStatus)
		})
	})

	r.Route("/subscription-analytics", func(r chi.Router) {
		r.Use(authenticate, auth.RequireSuperadmin)
		r.Get("/summary", h.analyticsSummary)
		r.Get("/expiring/{days}", h.analyticsExpiring)
		r.Get("/history/{organizationID}", h.analyticsHistory)
	})

	return r
}
