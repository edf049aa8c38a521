package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzalewsk/paynow_gateway-go/internal/application/reconcile"
	domainCheckout "github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/order"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/payment"
	"github.com/mzalewsk/paynow_gateway-go/internal/gateway/paynow"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/logging"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/metrics"
)

// OrderFactory converts a completed checkout into an order. Creation can
// fail (variant validation, host platform rules); the returned order is not
// yet persisted.
type OrderFactory interface {
	CreateFromCheckout(chk *domainCheckout.Checkout, total int64) (*order.Order, error)
}

type FactoryFunc func(*domainCheckout.Checkout, int64) (*order.Order, error)

func (f FactoryFunc) CreateFromCheckout(chk *domainCheckout.Checkout, total int64) (*order.Order, error) {
	return f(chk, total)
}

// Refunder reverses a payment on the processor side.
type Refunder interface {
	RefundOrVoid(ctx context.Context, pay *payment.Payment) error
}

type Finalizer struct {
	Factory  OrderFactory
	Refunder Refunder
	Logger   logging.Logger
	Metrics  *metrics.Counters
}

// Finalize records the state-changing transaction, verifies the checkout
// total still matches what the buyer paid, and turns the checkout into an
// order. On drift the payment is reversed and ErrTotalDrift returned. On
// order-creation failure the payment is left charged but orphaned; only the
// drift case auto-refunds.
func (f *Finalizer) Finalize(ctx context.Context, s reconcile.Stores, chk *domainCheckout.Checkout, pay *payment.Payment, n paynow.Notification, kind payment.TransactionKind) (*order.Order, error) {
	pay.Append(payment.Transaction{
		ID:        uuid.NewString(),
		Kind:      kind,
		Token:     n.PaymentID,
		Amount:    pay.Amount,
		Currency:  pay.Currency,
		Success:   true,
		CreatedAt: time.Now().UTC(),
	})
	// the charge status changes here but no confirmation gate is touched;
	// if order creation fails below the payment stays refundable without
	// re-triggering buyer-facing confirmation
	if err := s.Payments.Save(pay); err != nil {
		return nil, err
	}

	// reload both sides; concurrent writers may have touched them since the
	// caller read its copies
	pay, err := s.Payments.FindByID(pay.ID)
	if err != nil {
		return nil, err
	}
	chk, err = s.Checkouts.FindByID(chk.ID)
	if err != nil {
		return nil, err
	}

	total, err := chk.Total()
	if err != nil {
		f.Logger.Info("failed to complete checkout", map[string]any{
			"checkout-id": chk.ID,
			"error":       err.Error(),
		})
		return nil, nil
	}

	if total != pay.Amount {
		if err := f.reverse(ctx, s, pay); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: checkout %d, payment %d", reconcile.ErrTotalDrift, total, pay.Amount)
	}

	ord, err := f.Factory.CreateFromCheckout(chk, total)
	if err != nil {
		f.Logger.Info("failed to complete checkout", map[string]any{
			"checkout-id": chk.ID,
			"error":       err.Error(),
		})
		return nil, nil
	}

	if err := s.Orders.Save(ord); err != nil {
		return nil, err
	}

	// ownership swaps atomically: the payment now belongs to the order and
	// the checkout is gone, all in the same unit of work
	pay.OrderID = ord.ID
	pay.CheckoutID = ""
	if err := s.Payments.Save(pay); err != nil {
		return nil, err
	}
	if err := s.Checkouts.Delete(chk.ID); err != nil {
		return nil, err
	}

	f.Metrics.IncOrdersCreated()
	if err := s.Events.Record(event.Event{
		Type: event.OrderCreated,
		Payload: event.OrderCreatedPayload{
			OrderID:    ord.ID,
			CheckoutID: chk.ID,
			PaymentID:  pay.ID,
			Total:      ord.Total,
		},
	}); err != nil {
		return nil, err
	}

	if kind == payment.KindCapture {
		f.Metrics.IncCaptured()
		if err := s.Events.Record(event.Event{
			Type: event.OrderCaptured,
			Payload: event.OrderCapturedPayload{
				OrderID:   ord.ID,
				PaymentID: pay.ID,
				Amount:    pay.Amount,
				Currency:  pay.Currency,
			},
		}); err != nil {
			return nil, err
		}
	}

	return ord, nil
}

// reverse refunds a charged payment or voids an uncharged one and records
// the reversal transaction.
func (f *Finalizer) reverse(ctx context.Context, s reconcile.Stores, pay *payment.Payment) error {
	if err := f.Refunder.RefundOrVoid(ctx, pay); err != nil {
		return err
	}

	kind := payment.KindVoid
	status := payment.DeriveChargeStatus(pay.Amount, pay.Transactions)
	if status == payment.StatusFullyCharged || status == payment.StatusPartiallyCharged {
		kind = payment.KindRefund
	}

	pay.Append(payment.Transaction{
		ID:        uuid.NewString(),
		Kind:      kind,
		Token:     pay.ProcessorID,
		Amount:    pay.Amount,
		Currency:  pay.Currency,
		Success:   true,
		CreatedAt: time.Now().UTC(),
	})
	if err := s.Payments.Save(pay); err != nil {
		return err
	}

	f.Metrics.IncRefunded()
	return s.Events.Record(event.Event{
		Type: event.PaymentRefunded,
		Payload: event.PaymentRefundedPayload{
			PaymentID: pay.ID,
			Amount:    pay.Amount,
			Reason:    "checkout total changed",
		},
	})
}
