// Package registry tracks live minimap instances.
//
// The original behavior this replaces was an implicit page-wide singleton:
// constructing a preview deleted any matching elements found anywhere in
// the document. The registry makes the invariant explicit: at most one live
// instance per source marker, enforced here rather than by sweeping the DOM.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minimapd/minimapd/internal/dom"
	"github.com/minimapd/minimapd/internal/minimap"
)

// Instance binds one controller to its document and source marker.
type Instance struct {
	ID         string
	Source     string
	Controller *minimap.Controller
	Document   *dom.Document
	CreatedAt  time.Time

	// Notices receives the scale of every layout pass; transports drain it
	// to emit preview_change notifications. Sends never block.
	Notices chan minimap.Scale
}

// Registry is a thread-safe instance table.
type Registry struct {
	mu       sync.RWMutex
	byID     map[string]*Instance
	bySource map[string]string // source marker -> instance ID
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byID:     make(map[string]*Instance),
		bySource: make(map[string]string),
	}
}

// Open registers a new instance for a source marker, assigning it an ID.
// An existing instance for the same source is closed and replaced, which is
// the auditable form of the original "remove pre-existing previews"
// behavior.
func (r *Registry) Open(source string, ctrl *minimap.Controller, doc *dom.Document) *Instance {
	inst := &Instance{
		ID:         uuid.New().String(),
		Source:     source,
		Controller: ctrl,
		Document:   doc,
		CreatedAt:  time.Now(),
	}

	r.mu.Lock()
	var replaced *Instance
	if prevID, ok := r.bySource[source]; ok {
		replaced = r.byID[prevID]
		delete(r.byID, prevID)
	}
	r.byID[inst.ID] = inst
	r.bySource[source] = inst.ID
	r.mu.Unlock()

	if replaced != nil {
		replaced.Controller.Close()
	}
	return inst
}

// Get returns an instance by ID.
func (r *Registry) Get(id string) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("instance %s not found", id)
	}
	return inst, nil
}

// BySource returns the live instance for a source marker, or nil.
func (r *Registry) BySource(source string) *Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.bySource[source]; ok {
		return r.byID[id]
	}
	return nil
}

// Close removes an instance and closes its controller.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	inst, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
		if r.bySource[inst.Source] == id {
			delete(r.bySource, inst.Source)
		}
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("instance %s not found", id)
	}
	inst.Controller.Close()
	return nil
}

// List returns all live instances.
func (r *Registry) List() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Instance, 0, len(r.byID))
	for _, inst := range r.byID {
		out = append(out, inst)
	}
	return out
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
