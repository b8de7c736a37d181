package pubsub

import (
	"context"
	"sync"

	"cloud.google.com/go/pubsub"
)

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventGameFinished EventType = "game-finished"
)

// Handler consumes a raw message delivered by the inline client.
type Handler func(ctx context.Context, data []byte) error

type client struct {
	client   *pubsub.Client
	teardown func()
}

// InlineClient delivers messages to in-process subscribers synchronously. It
// stands in for Google Pub/Sub when no project is configured.
type InlineClient struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}
