package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agendahub/agendahub/pkg/response"
	"github.com/agendahub/agendahub/svc/auth"
	"github.com/agendahub/agendahub/svc/billing"
)

type handler struct {
	svc       billing.Service
	analytics *billing.Analytics
}

type createSubscriptionRequest struct {
	PlanID         string    `json:"planId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	UserID         uuid.UUID `json:"userId"`
}

func (h *handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, response.ErrBadRequest.WithMessage("invalid request body"))
		return
	}
	if req.PlanID == "" || req.OrganizationID == uuid.Nil || req.UserID == uuid.Nil {
		response.Error(w, response.ErrBadRequest.WithMessage("planId, organizationId and userId are required"))
		return
	}

	caller := auth.GetUserFromContext(r.Context())
	if caller == nil {
		response.Error(w, response.ErrUnauthorized)
		return
	}
	if !caller.IsSuperadmin() && !caller.BelongsTo(req.OrganizationID) {
		response.Error(w, response.ErrForbidden.WithMessage("cannot subscribe another organization"))
		return
	}

	checkout, err := h.svc.CreateSubscription(r.Context(), req.PlanID, req.OrganizationID, req.UserID)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.JSON(w, http.StatusCreated, checkout)
}

func (h *handler) webhook(w http.ResponseWriter, r *http.Request) {
	var update billing.WebhookUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		response.Error(w, response.ErrBadRequest.WithMessage("invalid webhook body"))
		return
	}
	if update.PaymentID == "" || update.Status == "" {
		response.Error(w, response.ErrBadRequest.WithMessage("paymentId and status are required"))
		return
	}

	result, err := h.svc.UpdateSubscriptionStatus(r.Context(), update)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *handler) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "organizationID"))
	if err != nil {
		response.Error(w, response.ErrBadRequest.WithMessage("invalid organization id"))
		return
	}

	caller := auth.GetUserFromContext(r.Context())
	if caller == nil {
		response.Error(w, response.ErrUnauthorized)
		return
	}
	if !caller.IsSuperadmin() && !caller.BelongsTo(orgID) {
		response.Error(w, response.ErrForbidden.WithMessage("cannot read another organization"))
		return
	}

	summary, err := h.svc.GetSubscriptionStatus(r.Context(), orgID)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

func (h *handler) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

func (h *handler) analyticsExpiring(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(chi.URLParam(r, "days"))
	if err != nil || days <= 0 {
		response.Error(w, response.ErrBadRequest.WithMessage("days must be a positive integer"))
		return
	}

	orgs, err := h.analytics.ExpiringWithin(r.Context(), days)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, orgs)
}

func (h *handler) analyticsHistory(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "organizationID"))
	if err != nil {
		response.Error(w, response.ErrBadRequest.WithMessage("invalid organization id"))
		return
	}

	history, err := h.analytics.History(r.Context(), orgID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, history)
}

// mapServiceError translates billing errors to HTTP errors. Unexpected
// failures fall through to a generic 500 inside response.Error.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, billing.ErrOrganizationNotFound),
		errors.Is(err, billing.ErrPlanNotFound),
		errors.Is(err, billing.ErrUserNotFound),
		errors.Is(err, billing.ErrPaymentNotFound):
		return response.ErrNotFound.WithMessage(rootMessage(err))
	case errors.Is(err, billing.ErrUserNotInOrganization),
		errors.Is(err, billing.ErrMissingContactInfo):
		return response.ErrBadRequest.WithMessage(rootMessage(err))
	case errors.Is(err, billing.ErrPaymentGateway):
		return response.ErrBadGateway.WithMessage("payment provider unavailable")
	default:
		return err
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{
		billing.ErrOrganizationNotFound,
		billing.ErrPlanNotFound,
		billing.ErrUserNotFound,
		billing.ErrPaymentNotFound,
		billing.ErrUserNotInOrganization,
		billing.ErrMissingContactInfo,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "request failed"
}
