// Package registry implements the ownership container used for every
// kind of GPU resource. Each Registry is an arena of slots addressed by
// generational handles: a released slot is reused only with a bumped
// generation, so copies of a released handle never resolve again.
//
// A Registry is not safe for concurrent use.
package registry

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slices"
)

// ErrUseAfterRelease is returned when a handle is used after its
// resource was removed, or was never issued by the registry.
var ErrUseAfterRelease = errors.New("handle used after release")

// Destroyer is implemented by everything a Registry can own.
type Destroyer interface {
	Destroy()
}

// Handle is an opaque reference to a resource of type T.
// The zero Handle is never valid.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle[T]) IsZero() bool {
	return h.generation == 0
}

func (h Handle[T]) String() string {
	return fmt.Sprintf("#%d.%d", h.index, h.generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	serial     uint64
	live       bool
}

// Registry exclusively owns resources of one kind.
type Registry[T Destroyer] struct {
	slots  []slot[T]
	free   []uint32
	live   int
	serial uint64
}

// New returns an empty Registry.
func New[T Destroyer]() *Registry[T] {
	return &Registry[T]{}
}

// Insert takes ownership of resource and returns its handle.
func (r *Registry[T]) Insert(resource T) Handle[T] {
	r.serial++
	r.live++

	if n := len(r.free); n > 0 {
		index := r.free[n-1]
		r.free = r.free[:n-1]
		s := &r.slots[index]
		s.value = resource
		s.serial = r.serial
		s.live = true
		return Handle[T]{index: index, generation: s.generation}
	}

	r.slots = append(r.slots, slot[T]{
		value:      resource,
		generation: 1,
		serial:     r.serial,
		live:       true,
	})
	return Handle[T]{index: uint32(len(r.slots) - 1), generation: 1}
}

func (r *Registry[T]) lookup(h Handle[T]) (*slot[T], bool) {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil, false
	}
	return s, true
}

// Contains reports whether h refers to a live resource.
func (r *Registry[T]) Contains(h Handle[T]) bool {
	_, ok := r.lookup(h)
	return ok
}

// Get returns the resource h refers to.
func (r *Registry[T]) Get(h Handle[T]) (T, error) {
	s, ok := r.lookup(h)
	if !ok {
		var zero T
		return zero, errors.Wrapf(ErrUseAfterRelease, "lookup %s", h)
	}
	return s.value, nil
}

// Remove destroys the resource h refers to and invalidates h.
// Removing an absent handle is an error.
func (r *Registry[T]) Remove(h Handle[T]) error {
	s, ok := r.lookup(h)
	if !ok {
		return errors.Wrapf(ErrUseAfterRelease, "remove %s", h)
	}
	value := s.value
	r.release(h.index)
	value.Destroy()
	return nil
}

func (r *Registry[T]) release(index uint32) {
	var zero T
	s := &r.slots[index]
	s.value = zero
	s.live = false
	s.generation++
	if s.generation == 0 {
		// wrapped around, retire the slot for good
		r.live--
		return
	}
	r.free = append(r.free, index)
	r.live--
}

// Len returns the number of live resources.
func (r *Registry[T]) Len() int {
	return r.live
}

// Each calls fn for every live resource in slot order until fn returns false.
func (r *Registry[T]) Each(fn func(Handle[T], T) bool) {
	for i := range r.slots {
		s := &r.slots[i]
		if !s.live {
			continue
		}
		if !fn(Handle[T]{index: uint32(i), generation: s.generation}, s.value) {
			return
		}
	}
}

// Oldest returns the earliest inserted resource that is still live.
func (r *Registry[T]) Oldest() (Handle[T], T, bool) {
	var (
		handle Handle[T]
		value  T
		serial uint64
		found  bool
	)
	for i := range r.slots {
		s := &r.slots[i]
		if s.live && (!found || s.serial < serial) {
			handle = Handle[T]{index: uint32(i), generation: s.generation}
			value, serial, found = s.value, s.serial, true
		}
	}
	return handle, value, found
}

// Clear destroys every live resource, newest first, and returns
// how many were destroyed.
func (r *Registry[T]) Clear() int {
	indices := make([]uint32, 0, r.live)
	for i := range r.slots {
		if r.slots[i].live {
			indices = append(indices, uint32(i))
		}
	}
	slices.SortFunc(indices, func(a, b uint32) int {
		sa, sb := r.slots[a].serial, r.slots[b].serial
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})

	for _, index := range indices {
		value := r.slots[index].value
		r.release(index)
		value.Destroy()
	}
	return len(indices)
}
