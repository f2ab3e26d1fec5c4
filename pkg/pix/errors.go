package pix

import "errors"

var (
	// ErrMissingAPIKey is returned when the client is built without credentials.
	ErrMissingAPIKey = errors.New("pix API key is required")

	// ErrMissingCustomerData is returned when a charge lacks required payer fields.
	ErrMissingCustomerData = errors.New("pix customer name, cellphone, email and tax id are required")

	// ErrInvalidAmount is returned for non-positive charge amounts.
	ErrInvalidAmount = errors.New("pix amount must be positive")

	// ErrRequestFailed wraps transport-level failures talking to the provider.
	ErrRequestFailed = errors.New("pix provider request failed")

	// ErrProviderError wraps non-2xx responses from the provider.
	ErrProviderError = errors.New("pix provider returned an error")

	// ErrPaymentNotFound is returned when the provider does not know the payment id.
	ErrPaymentNotFound = errors.New("pix payment not found")
)
