package fragpipe

import (
	"maps"
	"slices"
)

// AccessContext is the registry of named buffers shared by the tasks of one
// pipeline run. It owns the buffers it holds and closes them when they are
// replaced, dropped, or when the context itself is closed.
//
// Thread safety: AccessContext is not safe for concurrent mutation. It is
// driven by a single pipeline runner.
type AccessContext struct {
	buffers map[string]*Buffer
}

// NewAccessContext creates an empty context.
func NewAccessContext() *AccessContext {
	return &AccessContext{buffers: make(map[string]*Buffer)}
}

// Put registers b under name. A buffer already registered under name is
// closed and replaced.
func (ac *AccessContext) Put(name string, b *Buffer) {
	if old, ok := ac.buffers[name]; ok && old != b {
		old.Close()
	}
	ac.buffers[name] = b
}

// Get returns the buffer registered under name, or a *NotFoundError.
func (ac *AccessContext) Get(name string) (*Buffer, error) {
	b, ok := ac.buffers[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return b, nil
}

// Has reports whether name is registered.
func (ac *AccessContext) Has(name string) bool {
	_, ok := ac.buffers[name]
	return ok
}

// Drop closes and unregisters the buffer under name.
func (ac *AccessContext) Drop(name string) error {
	b, ok := ac.buffers[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	b.Close()
	delete(ac.buffers, name)
	return nil
}

// Names returns the registered names in sorted order.
func (ac *AccessContext) Names() []string {
	return slices.Sorted(maps.Keys(ac.buffers))
}

// Len returns the number of registered buffers.
func (ac *AccessContext) Len() int {
	return len(ac.buffers)
}

// Close closes every registered buffer and empties the context.
func (ac *AccessContext) Close() {
	for _, b := range ac.buffers {
		b.Close()
	}
	clear(ac.buffers)
}
