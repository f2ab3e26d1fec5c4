package billing

import "errors"

var (
	// ErrOrganizationNotFound is returned when the target organization does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrPlanNotFound is returned when the requested plan is not in the catalog.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrUserNotFound is returned when the acting user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserNotInOrganization is returned when the acting user belongs to a
	// different organization than the one being subscribed.
	ErrUserNotInOrganization = errors.New("user does not belong to organization")
	// ErrMissingContactInfo is returned when the billing contact lacks a field
	// the payment provider requires (name, email, cellphone or tax id).
	ErrMissingContactInfo = errors.New("missing customer contact information")
	// ErrPaymentNotFound is returned when a webhook references an unknown
	// payment id. The webhook is dropped.
	ErrPaymentNotFound = errors.New("no organization matches payment id")
	// ErrPaymentGateway wraps failures from the payment provider. Not retried.
	ErrPaymentGateway = errors.New("payment provider request failed")
)
