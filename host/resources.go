package host

import (
	"fmt"
	"sync"
)

// Resource is an integer handle the guest uses to refer to host-side state.
type Resource uint32

// ResourceTable maps guest handles to host-side values. Handles are never
// reused within the lifetime of a table.
type ResourceTable struct {
	mu      sync.Mutex
	next    Resource
	entries map[Resource]any
}

// NewResourceTable creates an empty resource table.
func NewResourceTable() *ResourceTable {
	return &ResourceTable{
		next:    1,
		entries: make(map[Resource]any),
	}
}

// Push stores a value and returns its freshly allocated handle.
func (t *ResourceTable) Push(v any) Resource {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.next
	t.next++
	t.entries[id] = v
	return id
}

// Get returns the value behind a handle.
func (t *ResourceTable) Get(id Resource) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.entries[id]
	return v, ok
}

// Delete removes a handle and returns the value it held.
func (t *ResourceTable) Delete(id Resource) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	return v, ok
}

// Len reports the number of live handles.
func (t *ResourceTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// GetResource fetches a handle's value with a concrete type.
func GetResource[T any](t *ResourceTable, id Resource) (T, error) {
	var zero T
	v, ok := t.Get(id)
	if !ok {
		return zero, fmt.Errorf("resource %d not found", id)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("resource %d holds %T, not %T", id, v, zero)
	}
	return typed, nil
}
