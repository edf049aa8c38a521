package fulfillment

import (
	"errors"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/order"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/logging"
)

// Handler reacts to captured orders: once funds are in, fulfillment may
// proceed.
type Handler struct {
	Orders order.Repository
	Logger logging.Logger
}

func (h *Handler) Handle(evt event.Event) error {
	if evt.Type != event.OrderCaptured {
		return nil
	}

	payload, ok := evt.Payload.(event.OrderCapturedPayload)
	if !ok {
		return errors.New("invalid payload for OrderCaptured")
	}

	if err := h.Orders.UpdateStatus(payload.OrderID, order.StatusFulfillmentStarted); err != nil {
		return err
	}

	h.Logger.Info("order captured, fulfillment started", map[string]any{
		"order-id":   payload.OrderID,
		"payment-id": payload.PaymentID,
		"amount":     payload.Amount,
	})
	return nil
}
