// Package modules implements the process-wide action-module registry and
// the host that loads action-module artifacts and bridges them to it.
// Invocation never holds the registry lock: Invoke copies the callback
// under the lock, releases it, then calls outside the lock, the same
// discipline the teacher's FieldBridge/EKKAdapter use around their
// callback maps (internal/bridge/field_bridge.go, ekk_adapter.go).
package modules

import "sync"

// Callback is invoked at task arrival with an opaque context payload
// (the task id).
type Callback func(context string)

// Registry is the process-wide module-id -> callback map.
type Registry struct {
	mu  sync.RWMutex
	cbs map[string]Callback
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{cbs: make(map[string]Callback)}
}

// Register maps id to cb, overwriting any prior callback atomically.
func (r *Registry) Register(id string, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cbs[id] = cb
}

// Unregister removes id, if present.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cbs, id)
}

// Invoke calls the callback registered under id with context, returning
// false if no such id is registered. The callback is copied out under
// the lock and called after releasing it, so a callback may itself call
// Register/Unregister/Invoke without deadlocking.
func (r *Registry) Invoke(id, context string) bool {
	r.mu.RLock()
	cb, ok := r.cbs[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	cb(context)
	return true
}

// InvokeAll invokes every currently-registered callback with context, in
// a snapshot taken at call time.
func (r *Registry) InvokeAll(context string) {
	r.mu.RLock()
	snapshot := make([]Callback, 0, len(r.cbs))
	for _, cb := range r.cbs {
		snapshot = append(snapshot, cb)
	}
	r.mu.RUnlock()
	for _, cb := range snapshot {
		cb(context)
	}
}

// List returns every registered module id.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.cbs))
	for id := range r.cbs {
		ids = append(ids, id)
	}
	return ids
}
