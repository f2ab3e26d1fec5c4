package billing

import (
	"context"

	"github.com/agendahub/agendahub/pkg/pix"
)

// PaymentGateway creates charges with the external PIX provider.
// *pix.Client satisfies this interface.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req pix.CreatePaymentRequest) (*pix.Payment, error)
}
