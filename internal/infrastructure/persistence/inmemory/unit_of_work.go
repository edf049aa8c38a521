package inmemory

import (
	"context"
	"sync"

	"github.com/mzalewsk/paynow_gateway-go/internal/application/contracts"
	"github.com/mzalewsk/paynow_gateway-go/internal/application/reconcile"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
)

// UnitOfWork serializes reconciliation per processor payment id with keyed
// mutexes and rolls the repositories back to a snapshot when the closure
// fails. Events are staged and only handed to the real recorder on commit.
type UnitOfWork struct {
	Payments  *PaymentRepository
	Checkouts *CheckoutRepository
	Orders    *OrderRepository
	Events    contracts.EventRecorder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUnitOfWork(payments *PaymentRepository, checkouts *CheckoutRepository, orders *OrderRepository, events contracts.EventRecorder) *UnitOfWork {
	return &UnitOfWork{
		Payments:  payments,
		Checkouts: checkouts,
		Orders:    orders,
		Events:    events,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (u *UnitOfWork) keyedLock(key string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()

	lock, ok := u.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		u.locks[key] = lock
	}
	return lock
}

type stagedRecorder struct {
	events []event.Event
}

func (r *stagedRecorder) Record(evt event.Event) error {
	r.events = append(r.events, evt)
	return nil
}

func (u *UnitOfWork) WithinPayment(ctx context.Context, processorID string, fn func(reconcile.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := u.keyedLock(processorID)
	lock.Lock()
	defer lock.Unlock()

	paymentsSnap := u.Payments.snapshot()
	checkoutsSnap := u.Checkouts.snapshot()
	ordersSnap := u.Orders.snapshot()

	staged := &stagedRecorder{}
	err := fn(reconcile.Stores{
		Payments:  u.Payments,
		Checkouts: u.Checkouts,
		Orders:    u.Orders,
		Events:    staged,
	})
	if err != nil {
		u.Payments.restore(paymentsSnap)
		u.Checkouts.restore(checkoutsSnap)
		u.Orders.restore(ordersSnap)
		return err
	}

	for _, evt := range staged.events {
		if err := u.Events.Record(evt); err != nil {
			return err
		}
	}
	return nil
}
