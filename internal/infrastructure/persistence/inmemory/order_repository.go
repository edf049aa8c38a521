package inmemory

import (
	"maps"
	"sync"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/order"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*order.Order),
	}
}

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Lines = make([]checkout.Line, len(o.Lines))
	copy(cp.Lines, o.Lines)
	return &cp
}

func (r *OrderRepository) Save(o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepository) FindByID(id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) UpdateStatus(id string, status order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

// Orders returns a copy of the stored records, for tests.
func (r *OrderRepository) Orders() map[string]*order.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*order.Order, len(r.orders))
	for id, o := range r.orders {
		out[id] = cloneOrder(o)
	}
	return out
}

func (r *OrderRepository) snapshot() map[string]*order.Order {
	return r.Orders()
}

func (r *OrderRepository) restore(snap map[string]*order.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = maps.Clone(snap)
}
