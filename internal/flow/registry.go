package flow

import (
	"errors"
	"sync"
	"time"
)

var ErrFlowNotFound = errors.New("flow not found")

// Registry tracks live flows. Each owner has at most one active flow: adding
// a new one closes the previous.
type Registry struct {
	mu      sync.Mutex
	flows   map[string]*Flow
	byOwner map[string]string
	idleTTL time.Duration
}

func NewRegistry(idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}

	return &Registry{
		flows:   make(map[string]*Flow),
		byOwner: make(map[string]string),
		idleTTL: idleTTL,
	}
}

// Add registers f and returns the flow it replaced, if any. The replaced flow
// is already closed.
func (r *Registry) Add(f *Flow) *Flow {
	r.mu.Lock()
	var replaced *Flow
	if f.owner != "" {
		if prevID, ok := r.byOwner[f.owner]; ok && prevID != f.id {
			replaced = r.flows[prevID]
			delete(r.flows, prevID)
		}
		r.byOwner[f.owner] = f.id
	}
	r.flows[f.id] = f
	r.mu.Unlock()

	if replaced != nil {
		replaced.Close()
	}
	return replaced
}

func (r *Registry) Get(id string) (*Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return f, nil
}

// Remove drops the flow from the registry without closing it.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

// Sweep closes and forgets flows idle for longer than the registry TTL, as
// well as flows that already ended. It returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var stale []*Flow
	for id, f := range r.flows {
		if f.Snapshot().State.Terminal() || f.IdleFor(now) > r.idleTTL {
			stale = append(stale, f)
			r.removeLocked(id)
		}
	}
	r.mu.Unlock()

	for _, f := range stale {
		f.Close()
	}
	return len(stale)
}

func (r *Registry) removeLocked(id string) {
	f, ok := r.flows[id]
	if !ok {
		return
	}
	delete(r.flows, id)
	if r.byOwner[f.owner] == id {
		delete(r.byOwner, f.owner)
	}
}
