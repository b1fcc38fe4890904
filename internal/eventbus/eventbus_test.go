package eventbus

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestBus_PublishDeliversInOrder(t *testing.T) {
	bus := New(zerolog.Nop())

	var got []string
	bus.Subscribe(TopicLogin, func(ev Event) { got = append(got, "first") })
	bus.Subscribe(TopicLogin, func(ev Event) { got = append(got, "second") })
	bus.Subscribe(TopicLogout, func(ev Event) { got = append(got, "other-topic") })

	bus.Publish(Event{Topic: TopicLogin, MemberID: 42})

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestBus_PublishStampsTimestamp(t *testing.T) {
	bus := New(zerolog.Nop())

	var received Event
	bus.Subscribe(TopicNotificationsChange, func(ev Event) { received = ev })
	bus.Publish(Event{Topic: TopicNotificationsChange, Unread: 3})

	assert.Equal(t, 3, received.Unread)
	assert.False(t, received.Timestamp.IsZero())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New(zerolog.Nop())

	calls := 0
	unsubscribe := bus.Subscribe(TopicLogin, func(ev Event) { calls++ })
	assert.Equal(t, 1, bus.Subscribers(TopicLogin))

	unsubscribe()
	unsubscribe() // second call is a no-op
	bus.Publish(Event{Topic: TopicLogin})

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, bus.Subscribers(TopicLogin))
}

func TestBus_UnsubscribeKeepsOthers(t *testing.T) {
	bus := New(zerolog.Nop())

	var got []string
	unsubA := bus.Subscribe(TopicLogin, func(ev Event) { got = append(got, "a") })
	bus.Subscribe(TopicLogin, func(ev Event) { got = append(got, "b") })

	unsubA()
	bus.Publish(Event{Topic: TopicLogin})

	assert.Equal(t, []string{"b"}, got)
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := New(zerolog.Nop())

	delivered := false
	bus.Subscribe(TopicLogin, func(ev Event) { panic("boom") })
	bus.Subscribe(TopicLogin, func(ev Event) { delivered = true })

	assert.NotPanics(t, func() { bus.Publish(Event{Topic: TopicLogin}) })
	assert.True(t, delivered)
}
