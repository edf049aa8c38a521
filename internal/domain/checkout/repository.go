package checkout

import "errors"

var ErrNotFound = errors.New("checkout not found")

type Repository interface {
	Save(*Checkout) error
	FindByID(string) (*Checkout, error)
	FindByPaymentID(string) (*Checkout, error)
	Delete(id string) error
}
