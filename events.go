package ledger

import "sync"

// Event is a notification published by an extension when its state changed
// in a way that observers may be interested in.
type Event interface {
	// EventName returns the name of the notification, for example
	// "Transfer" or "ErrorHandled".
	EventName() string
}

// EventSink consumes events.
type EventSink interface {
	Emit(Event)
}

type discardSink struct{}

func (discardSink) Emit(Event) {}

// EventBuffer collects events until they are either flushed to another sink
// or dropped.
//
// Operations that may be rolled back publish their events into a buffer and
// flush it only after their state changes were written. This guarantees that
// observers never see a notification for a change that did not happen.
type EventBuffer struct {
	mu     sync.Mutex
	events []Event
}

var _ EventSink = (*EventBuffer)(nil)

// NewEventBuffer returns an empty buffer.
func NewEventBuffer() *EventBuffer {
	return &EventBuffer{}
}

// Emit implements EventSink.
func (b *EventBuffer) Emit(e Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

// Events returns a copy of all buffered events.
func (b *EventBuffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

// FlushTo emits all buffered events into the given sink in the order they
// were collected and clears the buffer.
func (b *EventBuffer) FlushTo(sink EventSink) {
	b.mu.Lock()
	events := b.events
	b.events = nil
	b.mu.Unlock()

	for _, e := range events {
		sink.Emit(e)
	}
}

// Reset drops all buffered events.
func (b *EventBuffer) Reset() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}
