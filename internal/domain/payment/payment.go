package payment

import "time"

type ChargeStatus string

const (
	StatusNotCharged       ChargeStatus = "NOT_CHARGED"
	StatusPending          ChargeStatus = "PENDING"
	StatusPartiallyCharged ChargeStatus = "PARTIALLY_CHARGED"
	StatusFullyCharged     ChargeStatus = "FULLY_CHARGED"
	StatusRefunded         ChargeStatus = "REFUNDED"
	StatusError            ChargeStatus = "ERROR"
)

type TransactionKind string

const (
	KindAuth            TransactionKind = "AUTH"
	KindCapture         TransactionKind = "CAPTURE"
	KindPending         TransactionKind = "PENDING"
	KindConfirm         TransactionKind = "CONFIRM"
	KindRefund          TransactionKind = "REFUND"
	KindVoid            TransactionKind = "VOID"
	KindError           TransactionKind = "ERROR"
	KindActionToConfirm TransactionKind = "ACTION_TO_CONFIRM"
)

// Transaction is one append-only entry in a payment's history. Entries are
// never mutated or deleted once written.
type Transaction struct {
	ID        string
	Kind      TransactionKind
	Token     string
	Amount    int64
	Currency  string
	Success   bool
	CreatedAt time.Time
}

// Payment is one attempt to collect funds for a checkout. Amount is in minor
// currency units. At most one of CheckoutID and OrderID is set at any time;
// ownership moves to the order when the checkout completes.
type Payment struct {
	ID           string
	ProcessorID  string
	CheckoutID   string
	OrderID      string
	Amount       int64
	Currency     string
	ChargeStatus ChargeStatus
	Active       bool
	ReturnURL    string
	Transactions []Transaction
}

// Append adds a transaction to the history and recomputes the derived
// charge status.
func (p *Payment) Append(tx Transaction) {
	p.Transactions = append(p.Transactions, tx)
	p.RecomputeChargeStatus()
}

func (p *Payment) RecomputeChargeStatus() {
	p.ChargeStatus = DeriveChargeStatus(p.Amount, p.Transactions)
}
