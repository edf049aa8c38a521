package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
)

type Status string

const (
	StatusUnfulfilled        Status = "UNFULFILLED"
	StatusFulfillmentStarted Status = "FULFILLMENT_STARTED"
)

type Order struct {
	ID         string
	CheckoutID string
	Total      int64
	Currency   string
	Lines      []checkout.Line
	Status     Status
	CreatedAt  time.Time
}

// FromCheckout materializes an order from a completed checkout. The total is
// passed in rather than recomputed so the order always matches the amount the
// caller verified against the payment.
func FromCheckout(chk *checkout.Checkout, total int64) (*Order, error) {
	for _, line := range chk.Lines {
		if !line.Available {
			return nil, checkout.ErrUnavailableLines
		}
	}

	lines := make([]checkout.Line, len(chk.Lines))
	copy(lines, chk.Lines)

	return &Order{
		ID:         uuid.NewString(),
		CheckoutID: chk.ID,
		Total:      total,
		Currency:   chk.Currency,
		Lines:      lines,
		Status:     StatusUnfulfilled,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
