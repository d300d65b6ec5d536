package events

import "sync"

// Scope selects which events a subscription sees.
type Scope int

const (
	// ScopeWindow receives every event of the subscribed type.
	ScopeWindow Scope = iota
	// ScopeDocument receives every targeted event of the subscribed type.
	ScopeDocument
	// ScopeElement receives only events whose target matches the
	// subscription's marker.
	ScopeElement
)

// Handler consumes one event.
type Handler func(*Event)

// Subscription identifies one registered handler for later removal.
type Subscription int

type binding struct {
	id     Subscription
	scope  Scope
	marker string
	typ    Type
	fn     Handler
}

// Bus is a synchronous, scope-aware dispatcher. One Bus backs one page
// mirror; there is no process-global registry.
type Bus struct {
	mu       sync.Mutex
	seq      Subscription
	bindings []binding
}

// NewBus creates an empty dispatcher.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers a handler. marker is only consulted for ScopeElement.
func (b *Bus) Subscribe(scope Scope, marker string, typ Type, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.bindings = append(b.bindings, binding{
		id:     b.seq,
		scope:  scope,
		marker: marker,
		typ:    typ,
		fn:     fn,
	})
	return b.seq
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(id Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.bindings[:0]
	for _, bd := range b.bindings {
		if bd.id != id {
			kept = append(kept, bd)
		}
	}
	b.bindings = kept
}

// Dispatch delivers an event: element scope first, then document, then
// window, each in subscription order. StopPropagation halts before the
// next outer scope; handlers within one scope always all run, so a drag
// can start from either of two overlapping elements.
func (b *Bus) Dispatch(e *Event) {
	b.mu.Lock()
	snapshot := make([]binding, len(b.bindings))
	copy(snapshot, b.bindings)
	b.mu.Unlock()

	for _, scope := range []Scope{ScopeElement, ScopeDocument, ScopeWindow} {
		for _, bd := range snapshot {
			if bd.scope != scope || bd.typ != e.Type {
				continue
			}
			if scope == ScopeElement && (e.Target == "" || bd.marker != e.Target) {
				continue
			}
			if scope == ScopeDocument && e.Target == "" && !globalType(e.Type) {
				continue
			}
			bd.fn(e)
		}
		if e.Stopped() {
			return
		}
	}
}

// globalType reports event kinds that reach document scope even without a
// target, such as pointer moves tracked across the whole page.
func globalType(t Type) bool {
	switch t {
	case MouseMove, MouseUp, TouchStart, TouchMove, TouchEnd:
		return true
	}
	return false
}
