package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
)

// Recorder persists side-effect events next to the state change that caused
// them. When its Repository runs inside a store transaction, the event
// commits or rolls back with the reconciliation it belongs to.
type Recorder struct {
	Repo Repository
}

func (r *Recorder) Record(evt event.Event) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return err
	}

	return r.Repo.Save(OutboxEvent{
		ID:        uuid.NewString(),
		Type:      evt.Type,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
}
