package event

type Type string

const (
	OrderCaptured   Type = "ORDER_CAPTURED"
	OrderCreated    Type = "ORDER_CREATED"
	PaymentRefunded Type = "PAYMENT_REFUNDED"
)

type Event struct {
	Type    Type
	Payload any
}
