package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mzalewsk/paynow_gateway-go/internal/application/reconcile"
	"github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/outbox"
)

// UnitOfWork runs reconciliation inside one store transaction. sqlite has no
// row-level SELECT FOR UPDATE, so per-payment serialization comes from the
// in-process keyed mutexes and the database transaction provides
// commit-or-rollback atomicity.
type UnitOfWork struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{
		db:    db,
		locks: make(map[string]*sync.Mutex),
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

func (u *UnitOfWork) WithinPayment(ctx context.Context, processorID string, fn func(reconcile.Stores) error) error {
	lock := u.keyedLock(processorID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stores := reconcile.Stores{
		Payments:  NewPaymentRepository(tx),
		Checkouts: NewCheckoutRepository(tx),
		Orders:    NewOrderRepository(tx),
		Events:    &outbox.Recorder{Repo: outbox.NewSQLiteRepository(tx)},
	}

	if err := fn(stores); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
