package pubsub

import (
	"context"

	"github.com/charmbracelet/log"
)

var _ PubSubClient = (*InlineClient)(nil)

// NewInline creates a client without subscribers.
func NewInline() *InlineClient {
	return &InlineClient{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers h for messages sent to topic.
func (c *InlineClient) Subscribe(topic EventType, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = append(c.handlers[topic], h)
}

// SendMessage encodes data and runs every subscriber of topic before
// returning. Only encoding fails the send: once delivered, a subscriber error
// is logged and not reported, so the caller never delivers the message twice.
func (c *InlineClient) SendMessage(topic EventType, data any) error {
	payload, err := encode(data)
	if err != nil {
		return err
	}

	c.mu.RLock()
	handlers := append([]Handler(nil), c.handlers[topic]...)
	c.mu.RUnlock()

	if len(handlers) == 0 {
		log.Debug("No inline subscribers for topic", "topic", topic)
		return nil
	}
	for _, h := range handlers {
		if err := h(context.Background(), payload); err != nil {
			log.Error("Inline subscriber failed", "topic", topic, "error", err)
		}
	}
	return nil
}

func (c *InlineClient) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (c *InlineClient) Close() {}
