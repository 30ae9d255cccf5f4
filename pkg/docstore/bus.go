package docstore

import (
	"context"
	"sync"
)

// Bus carries "collection changed" signals between writers and subscribers.
// A signal names only the collection; subscribers re-query to see what moved.
type Bus interface {
	Publish(ctx context.Context, collection string) error
	// Listen registers for signals on collection. The returned func releases
	// the registration and is safe to call more than once.
	Listen(collection string) (<-chan struct{}, func())
}

// LocalBus fans signals out inside one process. Each listener holds at most
// one pending signal, so bursts of writes collapse into a single re-query.
type LocalBus struct {
	mu        sync.Mutex
	listeners map[string]map[chan struct{}]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{listeners: map[string]map[chan struct{}]struct{}{}}
}

func (b *LocalBus) Publish(_ context.Context, collection string) error {
	b.Notify(collection)
	return nil
}

// Notify signals every listener on collection without blocking.
func (b *LocalBus) Notify(collection string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.listeners[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (b *LocalBus) Listen(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	set, ok := b.listeners[collection]
	if !ok {
		set = map[chan struct{}]struct{}{}
		b.listeners[collection] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners[collection], ch)
			if len(b.listeners[collection]) == 0 {
				delete(b.listeners, collection)
			}
		})
	}
	return ch, release
}

func (b *LocalBus) listenerCount(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[collection])
}
