package inmemory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mzalewsk/paynow_gateway-go/internal/application/reconcile"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/order"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/payment"
	"github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/persistence/inmemory"
)

type capturingRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *capturingRecorder) Record(evt event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func newUoW() (*inmemory.UnitOfWork, *capturingRecorder) {
	recorder := &capturingRecorder{}
	uow := inmemory.NewUnitOfWork(
		inmemory.NewPaymentRepository(),
		inmemory.NewCheckoutRepository(),
		inmemory.NewOrderRepository(),
		recorder,
	)
	return uow, recorder
}

func TestWithinPayment_CommitPersistsWritesAndEvents(t *testing.T) {
	uow, recorder := newUoW()

	err := uow.WithinPayment(context.Background(), "p1", func(s reconcile.Stores) error {
		if err := s.Payments.Save(&payment.Payment{ID: "pay-1", ProcessorID: "p1", Active: true}); err != nil {
			return err
		}
		if err := s.Orders.Save(&order.Order{ID: "ord-1"}); err != nil {
			return err
		}
		return s.Events.Record(event.Event{Type: event.OrderCreated})
	})
	require.NoError(t, err)

	_, err = uow.Payments.FindByID("pay-1")
	require.NoError(t, err)
	_, err = uow.Orders.FindByID("ord-1")
	require.NoError(t, err)
	require.Len(t, recorder.events, 1)
}

func TestWithinPayment_FailureRollsBackAllStores(t *testing.T) {
	uow, recorder := newUoW()

	require.NoError(t, uow.Payments.Save(&payment.Payment{ID: "pay-1", ProcessorID: "p1", Active: true}))
	require.NoError(t, uow.Checkouts.Save(&checkout.Checkout{ID: "chk-1", PaymentID: "pay-1"}))

	boom := errors.New("boom")
	err := uow.WithinPayment(context.Background(), "p1", func(s reconcile.Stores) error {
		pay, err := s.Payments.FindByID("pay-1")
		if err != nil {
			return err
		}
		pay.Append(payment.Transaction{ID: "tx-1", Kind: payment.KindCapture, Success: true})
		if err := s.Payments.Save(pay); err != nil {
			return err
		}
		if err := s.Checkouts.Delete("chk-1"); err != nil {
			return err
		}
		if err := s.Orders.Save(&order.Order{ID: "ord-1"}); err != nil {
			return err
		}
		if err := s.Events.Record(event.Event{Type: event.OrderCreated}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	pay, err := uow.Payments.FindByID("pay-1")
	require.NoError(t, err)
	require.Empty(t, pay.Transactions, "appended transaction must be rolled back")

	_, err = uow.Checkouts.FindByID("chk-1")
	require.NoError(t, err, "deleted checkout must be restored")

	_, err = uow.Orders.FindByID("ord-1")
	require.ErrorIs(t, err, order.ErrNotFound)

	require.Empty(t, recorder.events, "staged events must not reach the recorder")
}

func TestWithinPayment_EventsStagedUntilCommit(t *testing.T) {
	uow, recorder := newUoW()

	err := uow.WithinPayment(context.Background(), "p1", func(s reconcile.Stores) error {
		if err := s.Events.Record(event.Event{Type: event.PaymentRefunded}); err != nil {
			return err
		}
		// not visible on the outside yet
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		require.Empty(t, recorder.events)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, recorder.events, 1)
}

func TestWithinPayment_ContextCancelled(t *testing.T) {
	uow, _ := newUoW()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := uow.WithinPayment(ctx, "p1", func(reconcile.Stores) error {
		t.Fatal("closure must not run on a cancelled context")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithinPayment_SerializesSameKey(t *testing.T) {
	uow, _ := newUoW()
	require.NoError(t, uow.Payments.Save(&payment.Payment{ID: "pay-1", ProcessorID: "p1", Active: true}))

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = uow.WithinPayment(context.Background(), "p1", func(s reconcile.Stores) error {
				pay, err := s.Payments.FindByID("pay-1")
				if err != nil {
					return err
				}
				pay.Amount++
				return s.Payments.Save(pay)
			})
		}()
	}
	wg.Wait()

	pay, err := uow.Payments.FindByID("pay-1")
	require.NoError(t, err)
	require.Equal(t, int64(workers), pay.Amount, "increments must not be lost")
}
