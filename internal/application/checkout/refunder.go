package checkout

import (
	"context"

	"github.com/google/uuid"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/payment"
	"github.com/mzalewsk/paynow_gateway-go/internal/gateway/paynow"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/logging"
)

// ProcessorRefunder reverses a payment through the paynow refunds API.
type ProcessorRefunder struct {
	Client *paynow.Client
	Logger logging.Logger
}

func (r *ProcessorRefunder) RefundOrVoid(ctx context.Context, pay *payment.Payment) error {
	r.Logger.Info("reversing processor payment", map[string]any{
		"payment-id":   pay.ID,
		"processor-id": pay.ProcessorID,
		"amount":       pay.Amount,
	})
	return r.Client.RefundPayment(ctx, pay.ProcessorID, pay.Amount, uuid.NewString())
}
