package paynow

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusNew       Status = "NEW"
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusExpired   Status = "EXPIRED"
	StatusRejected  Status = "REJECTED"
	StatusError     Status = "ERROR"
	StatusAbandoned Status = "ABANDONED"
)

const timestampLayout = "2006-01-02T15:04:05"

var ErrMalformedNotification = errors.New("paynow: malformed notification")

// Notification is one inbound status message. Deliveries are at-least-once
// and may arrive out of order relative to ModifiedAt; nothing here is safe
// to trust until the raw body passed signature verification.
type Notification struct {
	PaymentID  string
	ExternalID string
	Status     Status
	ModifiedAt time.Time
}

func parseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusNew, StatusPending, StatusConfirmed, StatusExpired,
		StatusRejected, StatusError, StatusAbandoned:
		return Status(s), true
	}
	return "", false
}

// ParseNotification decodes the webhook envelope. Unknown statuses are
// rejected rather than coerced; an unrecognized value is a reportable error,
// not a no-op.
func ParseNotification(raw []byte) (Notification, error) {
	var wire struct {
		PaymentID  string `json:"paymentId"`
		ExternalID string `json:"externalId"`
		Status     string `json:"status"`
		ModifiedAt string `json:"modifiedAt"`
	}

	if err := json.Unmarshal(raw, &wire); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
	}
	if wire.PaymentID == "" || wire.ExternalID == "" || wire.Status == "" {
		return Notification{}, fmt.Errorf("%w: missing required fields", ErrMalformedNotification)
	}

	status, ok := parseStatus(wire.Status)
	if !ok {
		return Notification{}, fmt.Errorf("%w: unknown status %q", ErrMalformedNotification, wire.Status)
	}

	modifiedAt, err := time.Parse(timestampLayout, wire.ModifiedAt)
	if err != nil {
		return Notification{}, fmt.Errorf("%w: bad modifiedAt %q", ErrMalformedNotification, wire.ModifiedAt)
	}

	return Notification{
		PaymentID:  wire.PaymentID,
		ExternalID: wire.ExternalID,
		Status:     status,
		ModifiedAt: modifiedAt,
	}, nil
}
