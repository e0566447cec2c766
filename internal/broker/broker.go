package broker

import (
	"context"
	"encoding/json"
	"sync"
)

// Event is a room-scoped broadcast travelling between server instances.
type Event struct {
	RoomID string          `json:"room_id"`
	Name   string          `json:"name"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Handler consumes delivered room events.
type Handler func(Event)

// Broker is the injected pub/sub capability backing room broadcasts. Every
// instance publishes through it and receives every room event back, its own
// included, so delivery to local websocket clients happens on the consume
// side regardless of which instance originated the event.
type Broker interface {
	PublishRoomEvent(ctx context.Context, event Event) error
	Subscribe(handler Handler)
	Close() error
}

// LocalBroker delivers events synchronously in-process. It serves single-node
// deployments and tests.
type LocalBroker struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewLocalBroker constructs an empty LocalBroker.
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

// PublishRoomEvent hands the event straight to every subscriber.
func (b *LocalBroker) PublishRoomEvent(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()
	for _, h := range handlers {
		h(event)
	}
	return nil
}

// Subscribe registers a handler.
func (b *LocalBroker) Subscribe(handler Handler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
}

// Close is a no-op for the local broker.
func (b *LocalBroker) Close() error {
	return nil
}
