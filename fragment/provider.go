package fragment

import (
	"sync"
)

// MeshesChanged is one batch of provider events. Consumers apply Added, then Updated, then
// Removed, each in slice order.
type MeshesChanged struct {
	Added   []*MeshFragment
	Updated []*MeshFragment
	Removed []ID
}

// Empty reports whether the batch carries no events.
func (ev MeshesChanged) Empty() bool {
	return len(ev.Added) == 0 && len(ev.Updated) == 0 && len(ev.Removed) == 0
}

// Provider is the external source of mesh fragments. Batches reach a handler in the order the
// provider produced them and never concurrently.
type Provider interface {
	// Subscribe registers handler and returns a function that unregisters it.
	Subscribe(handler func(MeshesChanged)) (unsubscribe func())
	// SetAcquisitionEnabled turns geometry acquisition on or off.
	SetAcquisitionEnabled(enabled bool)
}

// Feed is an in-process Provider. Publish delivers a batch synchronously to every subscriber;
// concurrent publishers are serialized so batch order is preserved.
type Feed struct {
	publishMu sync.Mutex

	mu       sync.Mutex
	nextID   int
	handlers map[int]func(MeshesChanged)
	enabled  bool
}

// NewFeed returns a Feed with acquisition disabled.
func NewFeed() *Feed {
	return &Feed{handlers: map[int]func(MeshesChanged){}}
}

// Subscribe registers handler.
func (f *Feed) Subscribe(handler func(MeshesChanged)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.handlers[id] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, id)
	}
}

// SetAcquisitionEnabled records the acquisition state.
func (f *Feed) SetAcquisitionEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

// AcquisitionEnabled returns the last state set through SetAcquisitionEnabled.
func (f *Feed) AcquisitionEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// Publish delivers ev to every subscriber.
func (f *Feed) Publish(ev MeshesChanged) {
	f.publishMu.Lock()
	defer f.publishMu.Unlock()

	f.mu.Lock()
	handlers := make([]func(MeshesChanged), 0, len(f.handlers))
	for i := 0; i < f.nextID; i++ {
		if handler, ok := f.handlers[i]; ok {
			handlers = append(handlers, handler)
		}
	}
	f.mu.Unlock()

	for _, handler := range handlers {
		handler(ev)
	}
}
