package events_test

import (
	"encoding/json"
	"testing"

	"github.com/mauv0809/courtside/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSessionSubscribersOnly(t *testing.T) {
	b := events.NewBroker()
	a, unsubA := b.Subscribe("T1")
	defer unsubA()
	other, unsubOther := b.Subscribe("T2")
	defer unsubOther()

	sent := b.PublishJSON("T1", events.EventTick, events.Tick{CourtID: 2, ElapsedMs: 3000})
	assert.Equal(t, 1, sent)

	msg := <-a
	assert.Equal(t, events.EventTick, msg.Event)
	var tick events.Tick
	require.NoError(t, json.Unmarshal(msg.Data, &tick))
	assert.Equal(t, events.Tick{CourtID: 2, ElapsedMs: 3000}, tick)

	select {
	case m := <-other:
		t.Fatalf("unexpected message on other session: %v", m)
	default:
	}
}

func TestUnsubscribeClosesAndForgets(t *testing.T) {
	b := events.NewBroker()
	ch, unsub := b.Subscribe("T1")
	assert.Equal(t, 1, b.Subscribers("T1"))

	unsub()
	unsub()
	assert.Equal(t, 0, b.Subscribers("T1"))
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.Publish("T1", events.EventState, []byte("{}")))
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := events.NewBroker()
	_, unsub := b.Subscribe("T1")
	defer unsub()

	delivered := 0
	for i := 0; i < events.DefaultBufferSize+5; i++ {
		delivered += b.Publish("T1", events.EventTick, []byte("{}"))
	}
	assert.Equal(t, events.DefaultBufferSize, delivered)
}

func TestCloseDisconnectsSubscribers(t *testing.T) {
	b := events.NewBroker()
	ch, unsub := b.Subscribe("T1")

	b.Close()
	_, open := <-ch
	assert.False(t, open)
	unsub()

	late, _ := b.Subscribe("T1")
	_, open = <-late
	assert.False(t, open, "subscriptions after close are already closed")
}
