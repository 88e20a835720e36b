// Package events carries committed state changes out of the keepers.
//
// Keepers emit one Event per successful mutation after the audit record has
// been persisted. Subscribers (the websocket hub, tests) must not block.
package events

import (
	"sync"
	"time"
)

// Event is a typed notification with flat string attributes and the
// committed record as payload.
type Event struct {
	Type       string            `json:"type"`
	Module     string            `json:"module"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Payload    interface{}       `json:"payload,omitempty"`
	Time       time.Time         `json:"time"`
}

// NewEvent builds an event from alternating key/value attribute pairs.
func NewEvent(module, eventType string, payload interface{}, kv ...string) Event {
	attrs := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs[kv[i]] = kv[i+1]
	}
	return Event{
		Type:       eventType,
		Module:     module,
		Attributes: attrs,
		Payload:    payload,
		Time:       time.Now().UTC(),
	}
}

// Emitter receives events.
type Emitter interface {
	Emit(Event)
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(Event) {}

// Fanout delivers each event to every registered emitter in order.
type Fanout struct {
	mu       sync.RWMutex
	emitters []Emitter
}

// NewFanout returns a Fanout over the given emitters.
func NewFanout(emitters ...Emitter) *Fanout {
	return &Fanout{emitters: emitters}
}

// Add registers another emitter.
func (f *Fanout) Add(e Emitter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitters = append(f.emitters, e)
}

// Emit delivers ev outside the lock so emitters may emit in turn.
func (f *Fanout) Emit(ev Event) {
	f.mu.RLock()
	emitters := f.emitters
	f.mu.RUnlock()
	for _, e := range emitters {
		e.Emit(ev)
	}
}

// Recorder keeps every event in memory. Used in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
