package reconcile

import (
	"context"

	"github.com/mzalewsk/paynow_gateway-go/internal/application/contracts"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/order"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/payment"
)

// Stores is the view of the persistent store a unit of work hands to the
// engine. Everything written through it, events included, commits or rolls
// back together.
type Stores struct {
	Payments  payment.Repository
	Checkouts checkout.Repository
	Orders    order.Repository
	Events    contracts.EventRecorder
}

// UnitOfWork serializes work per processor payment id and makes it atomic.
// Two notifications for the same payment never interleave; notifications for
// different payments run in parallel.
type UnitOfWork interface {
	WithinPayment(ctx context.Context, processorID string, fn func(Stores) error) error
}
