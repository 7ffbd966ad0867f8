// Package event queues touch and application events and fans them out to
// subscribers on the frame thread.
package event

import (
	"sync"

	"github.com/hubastard/trellis/engine/input"
)

// Event model (can expand over time).
type Event interface{ isEvent() }

// Touch carries one input sample to the active scene.
type Touch struct{ input.Event }

func (Touch) isEvent() {}

// App is an application-defined notification, e.g. "network up".
type App struct {
	Name    string
	Payload any
}

func (App) isEvent() {}

// Subscriber returns true from HandleEvent to stop the event reaching
// subscribers registered after it. Subscribers are compared by identity, so
// use pointer types.
type Subscriber interface {
	HandleEvent(ev Event) bool
}

// Broker is safe for concurrent Publish. ProcessEvents must only run on
// one goroutine at a time.
type Broker struct {
	mu    sync.Mutex
	queue []Event
	subs  []Subscriber
}

func NewBroker() *Broker { return &Broker{} }

func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	b.mu.Unlock()
}

// Subscribe adds s after the existing subscribers. Subscribing twice has no
// effect.
func (b *Broker) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, have := range b.subs {
		if have == s {
			return
		}
	}
	b.subs = append(b.subs, s)
}

func (b *Broker) Unsubscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, have := range b.subs {
		if have == s {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// ProcessEvents delivers the events queued so far, each at most once to
// each subscriber, and returns how many were delivered. Events published
// during delivery wait for the next call.
func (b *Broker) ProcessEvents() int {
	b.mu.Lock()
	queue := b.queue
	b.queue = nil
	subs := append([]Subscriber(nil), b.subs...)
	b.mu.Unlock()

	for _, ev := range queue {
		for _, s := range subs {
			if s.HandleEvent(ev) {
				break
			}
		}
	}
	return len(queue)
}

// Drop removes queued events for which match returns true and returns how
// many were removed.
func (b *Broker) Drop(match func(Event) bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.queue[:0]
	for _, ev := range b.queue {
		if !match(ev) {
			kept = append(kept, ev)
		}
	}
	n := len(b.queue) - len(kept)
	clear(b.queue[len(kept):])
	b.queue = kept
	return n
}

// IsTouch matches Touch events, for Drop.
func IsTouch(ev Event) bool {
	_, ok := ev.(Touch)
	return ok
}

func (b *Broker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
