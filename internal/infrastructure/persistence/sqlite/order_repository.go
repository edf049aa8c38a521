package sqlite

import (
	"database/sql"
	"errors"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/order"
)

type OrderRepository struct {
	db querier
}

func NewOrderRepository(db querier) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Save(o *order.Order) error {
	_, err := r.db.Exec(
		`INSERT INTO orders (id, checkout_id, total, currency, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET status = excluded.status`,
		o.ID,
		o.CheckoutID,
		o.Total,
		o.Currency,
		string(o.Status),
		o.CreatedAt,
	)
	if err != nil {
		return err
	}

	for i, line := range o.Lines {
		_, err := r.db.Exec(
			`INSERT OR IGNORE INTO order_lines (order_id, position, variant_id, quantity, unit_price, available)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, i, line.VariantID, line.Quantity, line.UnitPrice, boolToInt(line.Available),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *OrderRepository) FindByID(id string) (*order.Order, error) {
	row := r.db.QueryRow(
		`SELECT id, checkout_id, total, currency, status, created_at
		 FROM orders WHERE id = ?`,
		id,
	)

	var o order.Order
	var status string
	if err := row.Scan(
		&o.ID,
		&o.CheckoutID,
		&o.Total,
		&o.Currency,
		&status,
		&o.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, err
	}
	o.Status = order.Status(status)

	rows, err := r.db.Query(
		`SELECT variant_id, quantity, unit_price, available
		 FROM order_lines WHERE order_id = ? ORDER BY position`,
		o.ID,
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
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *OrderRepository) UpdateStatus(id string, status order.Status) error {
	res, err := r.db.Exec(
		`UPDATE orders SET status = ? WHERE id = ?`,
		string(status),
		id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return order.ErrNotFound
	}
	return nil
}
