package monitor

import (
	"sync"

	"github.com/Vallit0/asistencia-senoriales/internal/constants"
	"github.com/Vallit0/asistencia-senoriales/internal/events"
)

// Broadcaster fans live events out to subscribers such as SSE clients.
type Broadcaster struct {
	listeners []chan events.Event
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *Broadcaster) AddListener() chan events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan events.Event, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes and closes an event listener.
func (b *Broadcaster) RemoveListener(ch chan events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// Send delivers an event to all listeners without blocking.
func (b *Broadcaster) Send(e events.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- e:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Listeners returns the number of subscribers.
func (b *Broadcaster) Listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
