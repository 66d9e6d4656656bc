// Package transform holds named pixel transforms that pipelines can refer to
// by name.
//
// A Registry is built once by the host program and handed to the script
// parser. It never changes afterwards; With returns an extended copy.
package transform

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gogpu/fragpipe"
)

// Registry is an immutable name → Transform mapping. Names are matched
// case-insensitively.
//
// Thread safety: Registry is safe for concurrent use.
type Registry struct {
	entries map[string]fragpipe.Transform
}

// NewRegistry copies m into a new registry. Empty names and nil transforms
// are rejected, as are names that collide after case folding.
func NewRegistry(m map[string]fragpipe.Transform) (*Registry, error) {
	r := &Registry{entries: make(map[string]fragpipe.Transform, len(m))}
	for _, name := range slices.Sorted(maps.Keys(m)) {
		if err := r.add(name, m[name]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(name string, fn fragpipe.Transform) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("%w: empty transform name", fragpipe.ErrInvalidArgument)
	}
	if fn == nil {
		return fmt.Errorf("%w: transform %q is nil", fragpipe.ErrInvalidArgument, name)
	}
	if _, dup := r.entries[key]; dup {
		return fmt.Errorf("%w: duplicate transform %q", fragpipe.ErrInvalidArgument, name)
	}
	r.entries[key] = fn
	return nil
}

// With returns a copy of r that also maps name to fn.
func (r *Registry) With(name string, fn fragpipe.Transform) (*Registry, error) {
	next := &Registry{entries: maps.Clone(r.entries)}
	if next.entries == nil {
		next.entries = make(map[string]fragpipe.Transform)
	}
	if err := next.add(name, fn); err != nil {
		return nil, err
	}
	return next, nil
}

// Lookup returns the transform registered under name.
func (r *Registry) Lookup(name string) (fragpipe.Transform, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.entries[normalize(name)]
	return fn, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.entries))
}

// Len returns the number of registered transforms.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
