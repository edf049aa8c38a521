package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/order"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/payment"
	"github.com/mzalewsk/paynow_gateway-go/internal/gateway/paynow"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/logging"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/metrics"
)

// ErrTotalDrift means the checkout total no longer matches the amount the
// buyer paid. The finalizer reverses the payment and the engine commits the
// unit of work anyway; the reversal must persist.
var ErrTotalDrift = errors.New("checkout total does not match payment amount")

// Finalizer completes a paid checkout: records the transaction, checks for
// drift and materializes an order.
type Finalizer interface {
	Finalize(ctx context.Context, s Stores, chk *checkout.Checkout, pay *payment.Payment, n paynow.Notification, kind payment.TransactionKind) (*order.Order, error)
}

// Engine drives a verified, parsed notification through the payment state
// machine. It is the only component that mutates payments.
type Engine struct {
	UoW       UnitOfWork
	Finalizer Finalizer
	Logger    logging.Logger
	Metrics   *metrics.Counters
}

// Process advances state for one notification. CONFIRMED and PENDING are the
// only statuses with a business action; the rest are acknowledged and logged
// pending product clarification, never folded into success.
func (e *Engine) Process(ctx context.Context, n paynow.Notification) error {
	switch n.Status {
	case paynow.StatusConfirmed:
		return e.UoW.WithinPayment(ctx, n.PaymentID, func(s Stores) error {
			return e.handleSuccessful(ctx, s, n)
		})
	case paynow.StatusPending:
		return e.UoW.WithinPayment(ctx, n.PaymentID, func(s Stores) error {
			return e.handleProcessing(ctx, s, n)
		})
	default:
		if n.Status == paynow.StatusError {
			e.Metrics.IncProcessorErrors()
		}
		e.Logger.Info("ignoring notification status", map[string]any{
			"payment-id": n.PaymentID,
			"status":     string(n.Status),
		})
		return nil
	}
}

func (e *Engine) handleSuccessful(ctx context.Context, s Stores, n paynow.Notification) error {
	pay, err := s.Payments.FindActiveByProcessorID(n.PaymentID)
	if errors.Is(err, payment.ErrNotFound) {
		e.Logger.Warn("payment for notification not found", map[string]any{
			"payment-id": n.PaymentID,
		})
		return nil
	}
	if err != nil {
		return err
	}

	if pay.OrderID != "" {
		status := payment.DeriveChargeStatus(pay.Amount, pay.Transactions)
		if status != payment.StatusPending && status != payment.StatusNotCharged {
			// duplicate delivery; the derived status already reflects the
			// capture, so there is nothing to append
			return nil
		}

		pay.Append(payment.Transaction{
			ID:        uuid.NewString(),
			Kind:      payment.KindCapture,
			Token:     n.PaymentID,
			Amount:    pay.Amount,
			Currency:  pay.Currency,
			Success:   true,
			CreatedAt: time.Now().UTC(),
		})
		if err := s.Payments.Save(pay); err != nil {
			return err
		}
		e.Metrics.IncCaptured()

		return s.Events.Record(event.Event{
			Type: event.OrderCaptured,
			Payload: event.OrderCapturedPayload{
				OrderID:   pay.OrderID,
				PaymentID: pay.ID,
				Amount:    pay.Amount,
				Currency:  pay.Currency,
			},
		})
	}

	if pay.CheckoutID != "" {
		return e.finalize(ctx, s, pay, n, payment.KindCapture)
	}

	e.Logger.Warn("payment has no live owner", map[string]any{
		"payment-id": n.PaymentID,
	})
	return nil
}

func (e *Engine) handleProcessing(ctx context.Context, s Stores, n paynow.Notification) error {
	pay, err := s.Payments.FindActiveByProcessorID(n.PaymentID)
	if errors.Is(err, payment.ErrNotFound) {
		e.Logger.Warn("payment for notification not found", map[string]any{
			"payment-id": n.PaymentID,
		})
		return nil
	}
	if err != nil {
		return err
	}

	if pay.OrderID != "" {
		// the order exists, so the payment is at least captured; a late
		// PENDING must not regress it
		return nil
	}

	if pay.CheckoutID != "" {
		return e.finalize(ctx, s, pay, n, payment.KindPending)
	}

	e.Logger.Warn("payment has no live owner", map[string]any{
		"payment-id": n.PaymentID,
	})
	return nil
}

func (e *Engine) finalize(ctx context.Context, s Stores, pay *payment.Payment, n paynow.Notification, kind payment.TransactionKind) error {
	chk, err := s.Checkouts.FindByPaymentID(pay.ID)
	if errors.Is(err, checkout.ErrNotFound) {
		e.Logger.Warn("checkout for payment not found", map[string]any{
			"payment-id":  n.PaymentID,
			"checkout-id": pay.CheckoutID,
		})
		return nil
	}
	if err != nil {
		return err
	}

	_, err = e.Finalizer.Finalize(ctx, s, chk, pay, n, kind)
	if errors.Is(err, ErrTotalDrift) {
		// the reversal already happened inside the finalizer; commit it
		e.Logger.Error("checkout total drifted, payment reversed", map[string]any{
			"payment-id":  n.PaymentID,
			"checkout-id": chk.ID,
		})
		return nil
	}
	return err
}
