package event

type OrderCapturedPayload struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	CheckoutID string `json:"checkout_id"`
	PaymentID  string `json:"payment_id"`
	Total      int64  `json:"total"`
}

type PaymentRefundedPayload struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
}
