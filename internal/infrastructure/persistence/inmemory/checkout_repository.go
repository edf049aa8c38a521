package inmemory

import (
	"maps"
	"sync"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
)

type CheckoutRepository struct {
	mu        sync.RWMutex
	checkouts map[string]*checkout.Checkout
}

func NewCheckoutRepository() *CheckoutRepository {
	return &CheckoutRepository{
		checkouts: make(map[string]*checkout.Checkout),
	}
}

func cloneCheckout(c *checkout.Checkout) *checkout.Checkout {
	cp := *c
	cp.Lines = make([]checkout.Line, len(c.Lines))
	copy(cp.Lines, c.Lines)
	return &cp
}

func (r *CheckoutRepository) Save(c *checkout.Checkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checkouts[c.ID] = cloneCheckout(c)
	return nil
}

func (r *CheckoutRepository) FindByID(id string) (*checkout.Checkout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.checkouts[id]
	if !ok {
		return nil, checkout.ErrNotFound
	}
	return cloneCheckout(c), nil
}

func (r *CheckoutRepository) FindByPaymentID(paymentID string) (*checkout.Checkout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.checkouts {
		if c.PaymentID == paymentID {
			return cloneCheckout(c), nil
		}
	}
	return nil, checkout.ErrNotFound
}

func (r *CheckoutRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.checkouts[id]; !ok {
		return checkout.ErrNotFound
	}
	delete(r.checkouts, id)
	return nil
}

func (r *CheckoutRepository) snapshot() map[string]*checkout.Checkout {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*checkout.Checkout, len(r.checkouts))
	for id, c := range r.checkouts {
		out[id] = cloneCheckout(c)
	}
	return out
}

func (r *CheckoutRepository) restore(snap map[string]*checkout.Checkout) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checkouts = maps.Clone(snap)
}
