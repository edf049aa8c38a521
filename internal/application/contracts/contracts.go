package contracts

import "github.com/mzalewsk/paynow_gateway-go/internal/domain/event"

type EventRecorder interface {
	Record(event.Event) error
}
