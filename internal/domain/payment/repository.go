package payment

import "errors"

var ErrNotFound = errors.New("payment not found")

type Repository interface {
	Save(*Payment) error
	FindByID(string) (*Payment, error)
	FindActiveByProcessorID(string) (*Payment, error)
	DeactivateForCheckout(checkoutID string) error
}
