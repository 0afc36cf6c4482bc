// Package sensor exposes device readings (motion, loudness, face) to games
// as latest-value feeds. Readings are overwritten, never queued; a game
// samples the newest value whenever its clock ticks.
package sensor

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrUnavailable is returned by Start when no device backs the source.
var ErrUnavailable = errors.New("sensor: unavailable")

// Source is a latest-value stream of readings of type T.
type Source[T any] interface {
	// Start begins delivering readings. It returns ErrUnavailable when the
	// device is missing; the caller then runs without the feature.
	Start(ctx context.Context) error
	// Stop ends delivery. Idempotent.
	Stop()
	// Latest returns the newest reading, or the zero value while stopped.
	Latest() T
}

// Feed is a mutex-guarded latest-value cell. Producers (the keyboard, a
// bridge connection) Publish into it; one game at a time reads it.
type Feed[T any] struct {
	name string

	mu       sync.RWMutex
	value    T
	updated  time.Time
	devices  int
	running  bool
	stopHook func() bool
}

// NewFeed creates a feed without any backing device.
func NewFeed[T any](name string) *Feed[T] {
	return &Feed[T]{name: name}
}

// Name returns the feed name.
func (f *Feed[T]) Name() string {
	return f.name
}

// Attach registers a producing device. The returned func detaches it;
// calling it more than once is harmless.
func (f *Feed[T]) Attach() (detach func()) {
	f.mu.Lock()
	f.devices++
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.devices--
			f.mu.Unlock()
		})
	}
}

// Available reports whether any device is attached.
func (f *Feed[T]) Available() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.devices > 0
}

// Publish overwrites the latest reading.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	f.value = v
	f.updated = time.Now()
	f.mu.Unlock()
}

// Updated returns when the last reading arrived.
func (f *Feed[T]) Updated() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.updated
}

// Start implements Source. Cancelling ctx stops the feed.
func (f *Feed[T]) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.devices == 0 {
		return ErrUnavailable
	}
	if f.running {
		return nil
	}
	f.running = true
	if ctx != nil && ctx.Done() != nil {
		f.stopHook = context.AfterFunc(ctx, f.Stop)
	}
	return nil
}

// Stop implements Source.
func (f *Feed[T]) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	if f.stopHook != nil {
		f.stopHook()
		f.stopHook = nil
	}
}

// Running reports whether the feed was started and not stopped.
func (f *Feed[T]) Running() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.running
}

// Latest implements Source.
func (f *Feed[T]) Latest() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.running {
		var zero T
		return zero
	}
	return f.value
}

// Hub bundles the feeds a game may consume.
type Hub struct {
	Motion   *Feed[Motion]
	Loudness *Feed[Audio]
	Face     *Feed[Face]
}

// NewHub creates a hub with empty feeds.
func NewHub() *Hub {
	return &Hub{
		Motion:   NewFeed[Motion]("motion"),
		Loudness: NewFeed[Audio]("loudness"),
		Face:     NewFeed[Face]("face"),
	}
}

// StopAll stops every feed.
func (h *Hub) StopAll() {
	h.Motion.Stop()
	h.Loudness.Stop()
	h.Face.Stop()
}
