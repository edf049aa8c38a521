package payment

// DeriveChargeStatus folds a transaction history into a charge status. The
// status is always recomputed from the full history, never mutated in place,
// so replaying the same notification can only produce the same result.
//
// The fold ignores arrival order: it sums captured and refunded amounts and
// derives the status from the totals, so a PENDING entry appended after a
// full capture does not regress the status.
func DeriveChargeStatus(total int64, txs []Transaction) ChargeStatus {
	var captured, refunded int64
	var pending, voided, errored bool

	for _, tx := range txs {
		if tx.Kind == KindError {
			errored = true
			continue
		}
		if !tx.Success {
			continue
		}
		switch tx.Kind {
		case KindCapture, KindConfirm:
			captured += tx.Amount
		case KindRefund:
			refunded += tx.Amount
		case KindVoid:
			voided = true
		case KindPending:
			pending = true
		}
	}

	switch {
	case refunded > 0 && refunded >= captured:
		return StatusRefunded
	case voided && captured == 0:
		return StatusRefunded
	case total > 0 && captured >= total:
		return StatusFullyCharged
	case captured > 0:
		return StatusPartiallyCharged
	case errored:
		return StatusError
	case pending:
		return StatusPending
	default:
		return StatusNotCharged
	}
}
