package dom

import "sync"

// Patch op kinds streamed to thin clients.
const (
	OpStyle       = "style"
	OpAttr        = "attr"
	OpClassAdd    = "class_add"
	OpClassRemove = "class_remove"
	OpAppendBody  = "append_body"
	OpRemove      = "remove"
	OpSetHTML     = "set_html"
	OpScroll      = "scroll"
)

// Patch is one recorded mutation. Target is the journal reference of the
// affected node; scroll patches have no target.
type Patch struct {
	Op     string `json:"op"`
	Target string `json:"target,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Journal accumulates mutations in application order.
type Journal struct {
	mu      sync.Mutex
	pending []Patch
	total   int
}

func (j *Journal) record(p Patch) {
	j.mu.Lock()
	j.pending = append(j.pending, p)
	j.total++
	j.mu.Unlock()
}

// Drain returns and clears all pending patches.
func (j *Journal) Drain() []Patch {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := j.pending
	j.pending = nil
	return out
}

// Pending returns the number of undrained patches.
func (j *Journal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Total returns the number of patches recorded over the journal's lifetime.
func (j *Journal) Total() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.total
}
