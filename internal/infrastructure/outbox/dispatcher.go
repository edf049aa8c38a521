package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/logging"
)

type EventPublisher interface {
	Publish(event.Event) error
}

// Dispatcher polls the outbox and republishes committed events onto the bus.
// Publish failures leave the event unpublished; the next poll retries it.
type Dispatcher struct {
	Repo         Repository
	EventBus     EventPublisher
	Logger       logging.Logger
	PollInterval time.Duration
	BatchSize    int
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DispatchOnce()
		}
	}
}

func (d *Dispatcher) DispatchOnce() {
	events, err := d.Repo.FindUnpublished(d.BatchSize)
	if err != nil {
		d.Logger.Error("failed to read outbox", map[string]any{"error": err.Error()})
		return
	}

	for _, evt := range events {
		payload, err := decodePayload(evt.Type, evt.Payload)
		if err != nil {
			d.Logger.Error("failed to decode outbox payload", map[string]any{
				"event-id": evt.ID,
				"error":    err.Error(),
			})
			continue
		}

		if err := d.EventBus.Publish(event.Event{Type: evt.Type, Payload: payload}); err != nil {
			d.Logger.Error("failed to publish outbox event", map[string]any{
				"event-id": evt.ID,
				"error":    err.Error(),
			})
			continue
		}

		_ = d.Repo.MarkPublished(evt.ID)
	}
}

// decodePayload restores the typed payload so subscribers can assert on it
// the same way they would for a directly published event.
func decodePayload(t event.Type, raw []byte) (any, error) {
	switch t {
	case event.OrderCaptured:
		var p event.OrderCapturedPayload
		err := json.Unmarshal(raw, &p)
		return p, err
	case event.OrderCreated:
		var p event.OrderCreatedPayload
		err := json.Unmarshal(raw, &p)
		return p, err
	case event.PaymentRefunded:
		var p event.PaymentRefundedPayload
		err := json.Unmarshal(raw, &p)
		return p, err
	default:
		return nil, fmt.Errorf("unknown outbox event type %q", t)
	}
}
