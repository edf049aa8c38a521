package inmemory

import (
	"maps"
	"sync"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/payment"
)

type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*payment.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments: make(map[string]*payment.Payment),
	}
}

func clonePayment(p *payment.Payment) *payment.Payment {
	cp := *p
	cp.Transactions = make([]payment.Transaction, len(p.Transactions))
	copy(cp.Transactions, p.Transactions)
	return &cp
}

func (r *PaymentRepository) Save(p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payments[p.ID] = clonePayment(p)
	return nil
}

func (r *PaymentRepository) FindByID(id string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return clonePayment(p), nil
}

func (r *PaymentRepository) FindActiveByProcessorID(processorID string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if p.Active && p.ProcessorID == processorID {
			return clonePayment(p), nil
		}
	}
	return nil, payment.ErrNotFound
}

func (r *PaymentRepository) DeactivateForCheckout(checkoutID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.payments {
		if p.Active && p.CheckoutID == checkoutID {
			p.Active = false
		}
	}
	return nil
}

// Payments returns a copy of the stored records, for tests.
func (r *PaymentRepository) Payments() map[string]*payment.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*payment.Payment, len(r.payments))
	for id, p := range r.payments {
		out[id] = clonePayment(p)
	}
	return out
}

func (r *PaymentRepository) snapshot() map[string]*payment.Payment {
	return r.Payments()
}

func (r *PaymentRepository) restore(snap map[string]*payment.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payments = maps.Clone(snap)
}
