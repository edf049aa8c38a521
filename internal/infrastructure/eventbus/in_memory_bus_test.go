package eventbus_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
	"github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/eventbus"
)

func TestPublish_DeliversToMatchingSubscribers(t *testing.T) {
	bus := eventbus.NewInMemoryBus()

	var captured, created int
	bus.Subscribe(event.OrderCaptured, func(event.Event) error {
		captured++
		return nil
	})
	bus.Subscribe(event.OrderCaptured, func(event.Event) error {
		captured++
		return nil
	})
	bus.Subscribe(event.OrderCreated, func(event.Event) error {
		created++
		return nil
	})

	require.NoError(t, bus.Publish(event.Event{Type: event.OrderCaptured}))
	require.Equal(t, 2, captured)
	require.Equal(t, 0, created)
}

func TestPublish_NoSubscribers(t *testing.T) {
	bus := eventbus.NewInMemoryBus()
	require.NoError(t, bus.Publish(event.Event{Type: event.PaymentRefunded}))
}

func TestPublish_HandlerErrorStopsDelivery(t *testing.T) {
	bus := eventbus.NewInMemoryBus()

	boom := errors.New("boom")
	var second bool
	bus.Subscribe(event.OrderCaptured, func(event.Event) error {
		return boom
	})
	bus.Subscribe(event.OrderCaptured, func(event.Event) error {
		second = true
		return nil
	})

	require.ErrorIs(t, bus.Publish(event.Event{Type: event.OrderCaptured}), boom)
	require.False(t, second)
}

func TestSubscribe_InsideHandlerDoesNotDeadlock(t *testing.T) {
	bus := eventbus.NewInMemoryBus()

	bus.Subscribe(event.OrderCreated, func(event.Event) error {
		bus.Subscribe(event.OrderCaptured, func(event.Event) error { return nil })
		return nil
	})

	require.NoError(t, bus.Publish(event.Event{Type: event.OrderCreated}))
}
