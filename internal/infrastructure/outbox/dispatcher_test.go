package outbox_test

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
	"github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/eventbus"
	"github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/outbox"
)

type noopLogger struct{}

func (n *noopLogger) Info(string, map[string]any)  {}
func (n *noopLogger) Warn(string, map[string]any)  {}
func (n *noopLogger) Error(string, map[string]any) {}

type memoryOutbox struct {
	mu     sync.Mutex
	events []outbox.OutboxEvent
}

func (m *memoryOutbox) Save(evt outbox.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *memoryOutbox) FindUnpublished(limit int) ([]outbox.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []outbox.OutboxEvent
	for _, evt := range m.events {
		if !evt.Published {
			out = append(out, evt)
		}
		if len(out) == limit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryOutbox) MarkPublished(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.events {
		if m.events[i].ID == id {
			m.events[i].Published = true
			return nil
		}
	}
	return errors.New("event not found")
}

func TestRecorder_PersistsSerializedPayload(t *testing.T) {
	repo := &memoryOutbox{}
	recorder := &outbox.Recorder{Repo: repo}

	err := recorder.Record(event.Event{
		Type: event.OrderCaptured,
		Payload: event.OrderCapturedPayload{
			OrderID:   "ord-1",
			PaymentID: "pay-1",
			Amount:    4999,
			Currency:  "PLN",
		},
	})
	require.NoError(t, err)

	require.Len(t, repo.events, 1)
	require.Equal(t, event.OrderCaptured, repo.events[0].Type)
	require.NotEmpty(t, repo.events[0].ID)
	require.False(t, repo.events[0].Published)
	require.JSONEq(t,
		`{"order_id":"ord-1","payment_id":"pay-1","amount":4999,"currency":"PLN"}`,
		string(repo.events[0].Payload),
	)
}

func TestDispatchOnce_PublishesTypedPayloads(t *testing.T) {
	repo := &memoryOutbox{}
	recorder := &outbox.Recorder{Repo: repo}
	bus := eventbus.NewInMemoryBus()

	var received []event.Event
	bus.Subscribe(event.OrderCaptured, func(evt event.Event) error {
		received = append(received, evt)
		return nil
	})

	require.NoError(t, recorder.Record(event.Event{
		Type:    event.OrderCaptured,
		Payload: event.OrderCapturedPayload{OrderID: "ord-1", PaymentID: "pay-1", Amount: 4999, Currency: "PLN"},
	}))

	d := &outbox.Dispatcher{
		Repo:         repo,
		EventBus:     bus,
		Logger:       &noopLogger{},
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}
	d.DispatchOnce()

	require.Len(t, received, 1)
	// subscribers get the typed payload back, not raw bytes
	payload, ok := received[0].Payload.(event.OrderCapturedPayload)
	require.True(t, ok)
	require.Equal(t, "ord-1", payload.OrderID)
	require.Equal(t, int64(4999), payload.Amount)

	pending, err := repo.FindUnpublished(10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestDispatchOnce_PublishFailureKeepsEventPending(t *testing.T) {
	repo := &memoryOutbox{}
	recorder := &outbox.Recorder{Repo: repo}
	bus := eventbus.NewInMemoryBus()

	fail := true
	var delivered int
	bus.Subscribe(event.PaymentRefunded, func(event.Event) error {
		if fail {
			return errors.New("handler failed")
		}
		delivered++
		return nil
	})

	require.NoError(t, recorder.Record(event.Event{
		Type:    event.PaymentRefunded,
		Payload: event.PaymentRefundedPayload{PaymentID: "pay-1", Amount: 4999},
	}))

	d := &outbox.Dispatcher{
		Repo:         repo,
		EventBus:     bus,
		Logger:       &noopLogger{},
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}

	d.DispatchOnce()
	pending, err := repo.FindUnpublished(10)
	require.NoError(t, err)
	require.Len(t, pending, 1, "failed publish must stay in the outbox")

	fail = false
	d.DispatchOnce()
	require.Equal(t, 1, delivered)

	pending, err = repo.FindUnpublished(10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestDispatchOnce_SkipsUndecodablePayload(t *testing.T) {
	repo := &memoryOutbox{}
	require.NoError(t, repo.Save(outbox.OutboxEvent{
		ID:        "evt-1",
		Type:      event.Type("SOMETHING_ELSE"),
		Payload:   []byte(`{}`),
		CreatedAt: time.Now(),
	}))

	bus := eventbus.NewInMemoryBus()
	d := &outbox.Dispatcher{
		Repo:         repo,
		EventBus:     bus,
		Logger:       &noopLogger{},
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}
	d.DispatchOnce()

	pending, err := repo.FindUnpublished(10)
	require.NoError(t, err)
	require.Len(t, pending, 1, "undecodable events stay pending for inspection")
}
