/*
Package ledgertest provides helpers shared by tests of all extensions.
*/
package ledgertest

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/store"
)

var seq uint64

// NewCondition returns a condition unique within the test process.
func NewCondition() ledger.Condition {
	n := atomic.AddUint64(&seq, 1)
	return ledger.NewCondition("test", "user", []byte(fmt.Sprintf("%d", n)))
}

// NewAddress returns an address unique within the test process.
func NewAddress() ledger.Address {
	return NewCondition().Address()
}

// ParseAddress takes an address in a human readable format and returns its
// binary representation, failing the test on error.
func ParseAddress(t testing.TB, encodedAddress string) ledger.Address {
	t.Helper()

	addr, err := ledger.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// Store returns an in memory store that can be cache wrapped.
func Store() ledger.CacheableKVStore {
	return store.MemStore()
}

// EventRecorder is an EventSink that keeps everything emitted into it.
type EventRecorder struct {
	mu     sync.Mutex
	events []ledger.Event
}

var _ ledger.EventSink = (*EventRecorder)(nil)

// Emit implements ledger.EventSink.
func (r *EventRecorder) Emit(e ledger.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns all recorded events in emission order.
func (r *EventRecorder) Events() []ledger.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ledger.Event(nil), r.events...)
}

// Named returns recorded events with given name.
func (r *EventRecorder) Named(name string) []ledger.Event {
	var res []ledger.Event
	for _, e := range r.Events() {
		if e.EventName() == name {
			res = append(res, e)
		}
	}
	return res
}

// Reset drops all recorded events.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
