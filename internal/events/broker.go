package events

import (
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
)

// Event names sent on a session stream.
const (
	EventState = "state"
	EventTick  = "tick"
)

// DefaultBufferSize is the per-subscriber channel capacity.
const DefaultBufferSize = 16

// Message is one server-sent event.
type Message struct {
	Event string
	Data  []byte
}

// Tick reports the elapsed time of a running game.
type Tick struct {
	CourtID   int   `json:"courtId"`
	ElapsedMs int64 `json:"elapsedMs"`
}

// Broker fans session events out to stream subscribers. Slow subscribers lose
// messages instead of blocking publishers, which include game timers.
type Broker struct {
	mu      sync.RWMutex
	clients map[string]map[chan Message]struct{}
	buffer  int
	closed  bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		clients: make(map[string]map[chan Message]struct{}),
		buffer:  DefaultBufferSize,
	}
}

// Subscribe registers a new client for sessionID. The returned function
// unsubscribes and closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe(sessionID string) (<-chan Message, func()) {
	ch := make(chan Message, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	set, ok := b.clients[sessionID]
	if !ok {
		set = make(map[chan Message]struct{})
		b.clients[sessionID] = set
	}
	set[ch] = struct{}{}
	count := len(set)
	b.mu.Unlock()

	log.Debug("Stream client connected", "session_id", sessionID, "clients", count)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			set, ok := b.clients[sessionID]
			if !ok {
				return
			}
			if _, ok := set[ch]; !ok {
				return
			}
			delete(set, ch)
			if len(set) == 0 {
				delete(b.clients, sessionID)
			}
			close(ch)
			log.Debug("Stream client disconnected", "session_id", sessionID)
		})
	}
}

// Subscribers returns the number of clients listening on sessionID.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[sessionID])
}

// Publish sends a raw event to every subscriber of sessionID and returns how
// many received it.
func (b *Broker) Publish(sessionID, event string, data []byte) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	msg := Message{Event: event, Data: data}
	sent := 0
	for ch := range b.clients[sessionID] {
		select {
		case ch <- msg:
			sent++
		default:
			log.Debug("Dropping event for slow stream client", "session_id", sessionID, "event", event)
		}
	}
	return sent
}

// PublishJSON encodes v and publishes it.
func (b *Broker) PublishJSON(sessionID, event string, v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to encode stream event", "session_id", sessionID, "event", event, "error", err)
		return 0
	}
	return b.Publish(sessionID, event, data)
}

// Close disconnects every subscriber. Later subscriptions get a closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sessionID, set := range b.clients {
		for ch := range set {
			close(ch)
		}
		delete(b.clients, sessionID)
	}
	b.closed = true
}
