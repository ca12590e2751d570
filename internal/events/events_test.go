package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var got []*Event
	bus.Subscribe(EventReservationCreated, func(event *Event) error {
		got = append(got, event)
		return nil
	})

	bus.Publish(&Event{Type: EventReservationCreated, Payload: []byte("one")})
	bus.Publish(&Event{Type: EventReservationCancelled, Payload: []byte("other")})

	require.Len(t, got, 1)
	assert.Equal(t, []byte("one"), got[0].Payload)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestEventBusMultipleHandlers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventReservationCancelled, func(*Event) error {
			calls++
			return nil
		})
	}

	bus.Publish(&Event{Type: EventReservationCancelled})
	assert.Equal(t, 3, calls)
}

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var raw []byte
	bus.Subscribe(EventReservationCreated, func(event *Event) error {
		raw = event.Payload
		return nil
	})

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	payload := NewReservationPayload(EventReservationCreated, 1, 2, 3, start, start.Add(time.Hour))
	require.NoError(t, bus.PublishJSON(EventReservationCreated, payload))

	var decoded ReservationEventPayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, payload.EventID, decoded.EventID)
	assert.Equal(t, int64(3), decoded.ReservationID)
	assert.True(t, decoded.StartTime.Equal(start))
}

func TestPublishJSONNilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventReservationCreated, struct{}{}))
}

func TestNewReservationPayloadUniqueIDs(t *testing.T) {
	now := time.Now()
	a := NewReservationPayload(EventReservationCreated, 1, 1, 1, now, now.Add(time.Hour))
	b := NewReservationPayload(EventReservationCreated, 1, 1, 1, now, now.Add(time.Hour))
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.NotEmpty(t, a.EventID)
}
