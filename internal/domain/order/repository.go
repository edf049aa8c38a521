package order

import "errors"

var ErrNotFound = errors.New("order not found")

type Repository interface {
	Save(*Order) error
	FindByID(string) (*Order, error)
	UpdateStatus(id string, status Status) error
}
