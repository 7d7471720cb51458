// Package event is a small in-process pub/sub bus for simulation state
// transitions.
package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(evt any)

// Bus dispatches events to subscribers synchronously. Handlers run inline on
// the publishing goroutine so that transitions observed inside a fixed
// simulation step keep a deterministic order. Handlers must therefore be
// cheap and must not block.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
	}
}

func (b *Bus) Subscribe(name string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

func (b *Bus) Publish(name string, evt any) {
	b.mu.RLock()
	handlers := make([]HandlerFunc, len(b.handlers[name]))
	copy(handlers, b.handlers[name])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(name, handler, evt)
	}
}

// dispatch isolates handler panics so one misbehaving subscriber cannot take
// down the simulation loop.
func (b *Bus) dispatch(name string, handler HandlerFunc, evt any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", name, "panic", r)
		}
	}()
	handler(evt)
}
