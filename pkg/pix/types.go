package pix

import "time"

// Customer identifies the payer on a PIX charge. The provider requires all
// four fields to issue a QR code.
type Customer struct {
	Name      string `json:"name"`
	Cellphone string `json:"cellphone"`
	Email     string `json:"email"`
	TaxID     string `json:"taxId"`
}

// CreatePaymentRequest describes a new PIX charge.
type CreatePaymentRequest struct {
	Amount      int64    `json:"amount"`      // Amount in centavos
	ExpiresIn   int      `json:"expiresIn"`   // Seconds until the QR code expires
	Description string   `json:"description"` // Shown in the payer's bank app
	Customer    Customer `json:"customer"`
}

// PaymentStatus is the provider-side status of a PIX charge.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusPaid      PaymentStatus = "PAID"
	StatusExpired   PaymentStatus = "EXPIRED"
	StatusCancelled PaymentStatus = "CANCELLED"
	StatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment is a PIX charge as reported by the provider.
type Payment struct {
	ID           string        `json:"id"`
	Amount       int64         `json:"amount"`
	Status       PaymentStatus `json:"status"`
	BRCode       string        `json:"brCode"`       // Copy-and-paste PIX code
	BRCodeBase64 string        `json:"brCodeBase64"` // QR image as a base64 data URI
	ExpiresAt    time.Time     `json:"expiresAt"`
	CreatedAt    time.Time     `json:"createdAt"`
	DevMode      bool          `json:"devMode,omitempty"`
}
