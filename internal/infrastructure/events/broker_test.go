package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_DeliversToUserSubscribersOnly(t *testing.T) {
	b := NewBroker()

	alice, cancelAlice := b.Subscribe("alice")
	defer cancelAlice()
	bob, cancelBob := b.Subscribe("bob")
	defer cancelBob()

	b.Publish(Event{Type: ProfileUpdated, UserID: "alice", Data: "x"})

	select {
	case e := <-alice:
		assert.Equal(t, ProfileUpdated, e.Type)
		assert.False(t, e.At.IsZero())
	default:
		t.Fatal("alice did not receive the event")
	}

	select {
	case e := <-bob:
		t.Fatalf("bob received %v", e)
	default:
	}
}

func TestBroker_CancelClosesChannel(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe("alice")
	require.Equal(t, 1, b.Subscribers("alice"))

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.Subscribers("alice"))

	assert.NotPanics(t, func() { b.Publish(Event{UserID: "alice"}) })
}

func TestBroker_SlowSubscriberDropsEvents(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe("alice")
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(Event{Type: ConnectionCreated, UserID: "alice"})
	}
	assert.Len(t, ch, subscriberBuffer)
}
