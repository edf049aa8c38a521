package sqlite

import (
	"database/sql"
	"errors"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
)

type CheckoutRepository struct {
	db querier
}

func NewCheckoutRepository(db querier) *CheckoutRepository {
	return &CheckoutRepository{db: db}
}

func (r *CheckoutRepository) Save(c *checkout.Checkout) error {
	_, err := r.db.Exec(
		`INSERT INTO checkouts (id, email, currency, shipping_price, discount, payment_id)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 email = excluded.email,
		 shipping_price = excluded.shipping_price,
		 discount = excluded.discount,
		 payment_id = excluded.payment_id`,
		c.ID,
		c.Email,
		c.Currency,
		c.ShippingPrice,
		c.Discount,
		c.PaymentID,
	)
	if err != nil {
		return err
	}

	// lines are replaced wholesale; the host platform owns their contents
	if _, err := r.db.Exec(`DELETE FROM checkout_lines WHERE checkout_id = ?`, c.ID); err != nil {
		return err
	}
	for i, line := range c.Lines {
		_, err := r.db.Exec(
			`INSERT INTO checkout_lines (checkout_id, position, variant_id, quantity, unit_price, available)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, i, line.VariantID, line.Quantity, line.UnitPrice, boolToInt(line.Available),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *CheckoutRepository) FindByID(id string) (*checkout.Checkout, error) {
	return r.findOne(`SELECT id, email, currency, shipping_price, discount, payment_id
		 FROM checkouts WHERE id = ?`, id)
}

func (r *CheckoutRepository) FindByPaymentID(paymentID string) (*checkout.Checkout, error) {
	return r.findOne(`SELECT id, email, currency, shipping_price, discount, payment_id
		 FROM checkouts WHERE payment_id = ?`, paymentID)
}

func (r *CheckoutRepository) findOne(query string, arg any) (*checkout.Checkout, error) {
	row := r.db.QueryRow(query, arg)

	var c checkout.Checkout
	if err := row.Scan(
		&c.ID,
		&c.Email,
		&c.Currency,
		&c.ShippingPrice,
		&c.Discount,
		&c.PaymentID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, checkout.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT variant_id, quantity, unit_price, available
		 FROM checkout_lines WHERE checkout_id = ? ORDER BY position`,
		c.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line checkout.Line
		var available int
		if err := rows.Scan(&line.VariantID, &line.Quantity, &line.UnitPrice, &available); err != nil {
			return nil, err
		}
		line.Available = available == 1
		c.Lines = append(c.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *CheckoutRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM checkouts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return checkout.ErrNotFound
	}
	return nil
}
