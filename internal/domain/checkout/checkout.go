package checkout

import "errors"

var ErrUnavailableLines = errors.New("checkout has unavailable lines")

// Line is one variant in the cart. UnitPrice is in minor currency units.
// Available flips to false when the variant is removed from sale while the
// checkout is still open.
type Line struct {
	VariantID string
	Quantity  int
	UnitPrice int64
	Available bool
}

// Checkout is a cart in progress. ID doubles as the externally visible
// checkout token. PaymentID points at the single active payment attempt,
// empty until one is initiated.
type Checkout struct {
	ID            string
	Email         string
	Currency      string
	Lines         []Line
	ShippingPrice int64
	Discount      int64
	PaymentID     string
}

// Total recomputes the authoritative checkout total from the current lines.
// It fails when any line became unavailable since the payment started.
func (c *Checkout) Total() (int64, error) {
	var total int64
	for _, line := range c.Lines {
		if !line.Available {
			return 0, ErrUnavailableLines
		}
		total += int64(line.Quantity) * line.UnitPrice
	}
	total += c.ShippingPrice
	total -= c.Discount
	return total, nil
}
