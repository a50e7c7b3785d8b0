package eventbus

import (
	"sync"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/application"
)

// Bus fans domain events out to registered handlers. Publish runs handlers
// synchronously in subscription order; handlers must not block, as publishers
// call from inside mutation paths.
type Bus struct {
	mu       sync.RWMutex
	handlers []func(application.Event)
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for every published event.
func (b *Bus) Subscribe(handler func(application.Event)) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
}

// Publish implements application.EventPublisher.
func (b *Bus) Publish(event application.Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
