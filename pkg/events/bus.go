// Package events is the publish/subscribe channel between the automation
// engine and whoever is watching it (terminal view, log file, tests).
//
// Publishing is synchronous and happens on the engine's goroutine, so every
// subscriber sees events in the order the engine produced them. Subscribers
// that need to hand events to another goroutine (a UI loop, for instance) do
// so themselves.
package events

import (
	"fmt"
	"sync"

	"github.com/entrhq/dossier/pkg/types"
)

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// Bus is an ordered list of subscribers. The zero value is ready to use.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function that removes it again.
// Handlers are called in subscription order.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every subscriber before returning.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(e)
	}
}

// Logf publishes a formatted log line.
func (b *Bus) Logf(format string, args ...interface{}) {
	b.Publish(NewLogEvent(fmt.Sprintf(format, args...)))
}

// StatusChanged publishes the record's current status.
func (b *Bus) StatusChanged(record *types.Record) {
	b.Publish(NewStatusEvent(record))
}

// Recorder is a Handler that keeps every event it sees. It is safe for
// concurrent use and handy for tests and run reports.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Handle appends e.
func (r *Recorder) Handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Messages returns the text of recorded log events.
func (r *Recorder) Messages() []string {
	var out []string
	for _, e := range r.Events() {
		if e.Type == EventTypeLog {
			out = append(out, e.Message)
		}
	}
	return out
}

// Statuses returns the status transitions recorded for identifier, in order.
func (r *Recorder) Statuses(identifier string) []types.Status {
	var out []types.Status
	for _, e := range r.Events() {
		if e.Type == EventTypeStatusChange && e.Identifier == identifier {
			out = append(out, e.Status)
		}
	}
	return out
}
