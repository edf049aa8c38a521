package sqlite

import (
	"database/sql"
	"errors"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/payment"
)

// querier is satisfied by both *sql.DB and *sql.Tx so each repository can be
// used standalone or inside a unit of work.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type PaymentRepository struct {
	db querier
}

func NewPaymentRepository(db querier) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Save upserts the payment row and appends any transactions not yet stored.
// Existing transaction rows are never updated; the log is append-only.
func (r *PaymentRepository) Save(p *payment.Payment) error {
	_, err := r.db.Exec(
		`INSERT INTO payments
		 (id, processor_id, checkout_id, order_id, amount, currency, charge_status, active, return_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 processor_id = excluded.processor_id,
		 checkout_id = excluded.checkout_id,
		 order_id = excluded.order_id,
		 charge_status = excluded.charge_status,
		 active = excluded.active,
		 return_url = excluded.return_url`,
		p.ID,
		p.ProcessorID,
		p.CheckoutID,
		p.OrderID,
		p.Amount,
		p.Currency,
		string(p.ChargeStatus),
		boolToInt(p.Active),
		p.ReturnURL,
	)
	if err != nil {
		return err
	}

	for _, tx := range p.Transactions {
		_, err := r.db.Exec(
			`INSERT OR IGNORE INTO transactions
			 (id, payment_id, kind, token, amount, currency, success, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.ID,
			p.ID,
			string(tx.Kind),
			tx.Token,
			tx.Amount,
			tx.Currency,
			boolToInt(tx.Success),
			tx.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *PaymentRepository) FindByID(id string) (*payment.Payment, error) {
	return r.findOne(`SELECT id, processor_id, checkout_id, order_id, amount, currency, charge_status, active, return_url
		 FROM payments WHERE id = ?`, id)
}

func (r *PaymentRepository) FindActiveByProcessorID(processorID string) (*payment.Payment, error) {
	return r.findOne(`SELECT id, processor_id, checkout_id, order_id, amount, currency, charge_status, active, return_url
		 FROM payments WHERE processor_id = ? AND active = 1`, processorID)
}

func (r *PaymentRepository) findOne(query string, arg any) (*payment.Payment, error) {
	row := r.db.QueryRow(query, arg)

	var p payment.Payment
	var status string
	var active int

	if err := row.Scan(
		&p.ID,
		&p.ProcessorID,
		&p.CheckoutID,
		&p.OrderID,
		&p.Amount,
		&p.Currency,
		&status,
		&active,
		&p.ReturnURL,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrNotFound
		}
		return nil, err
	}

	p.ChargeStatus = payment.ChargeStatus(status)
	p.Active = active == 1

	txs, err := r.loadTransactions(p.ID)
	if err != nil {
		return nil, err
	}
	p.Transactions = txs

	return &p, nil
}

func (r *PaymentRepository) loadTransactions(paymentID string) ([]payment.Transaction, error) {
	rows, err := r.db.Query(
		`SELECT id, kind, token, amount, currency, success, created_at
		 FROM transactions
		 WHERE payment_id = ?
		 ORDER BY created_at, id`,
		paymentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []payment.Transaction
	for rows.Next() {
		var tx payment.Transaction
		var kind string
		var success int

		if err := rows.Scan(
			&tx.ID,
			&kind,
			&tx.Token,
			&tx.Amount,
			&tx.Currency,
			&success,
			&tx.CreatedAt,
		); err != nil {
			return nil, err
		}

		tx.Kind = payment.TransactionKind(kind)
		tx.Success = success == 1
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

func (r *PaymentRepository) DeactivateForCheckout(checkoutID string) error {
	_, err := r.db.Exec(
		`UPDATE payments SET active = 0 WHERE checkout_id = ? AND active = 1`,
		checkoutID,
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
