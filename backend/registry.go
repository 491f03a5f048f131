// Package backend keeps the registry of render system backends.
// Backend packages register themselves from init, so importing one
// for its side effects makes it available by name.
package backend

import (
	"strings"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/devblok/rendersys/core"
)

// ErrNotAvailable is returned when no registered backend matches.
var ErrNotAvailable = errors.New("backend not available")

// Options are handed to a backend factory.
type Options struct {
	Logger logrus.FieldLogger

	// ProcAddr is the loader entry point of the native API,
	// nil selects the system loader
	ProcAddr unsafe.Pointer

	// InstanceExtensions are requested on top of the ones the
	// render system negotiates, e.g. the window system's
	InstanceExtensions []string
}

// Factory creates a backend.
type Factory func(Options) (core.Backend, error)

type entry struct {
	name     string
	priority int
	factory  Factory
}

var (
	registryMu sync.RWMutex
	backends   = map[string]entry{}
)

// Register registers a backend factory under name. Default tries
// backends by descending priority. Registering a name again replaces it.
func Register(name string, priority int, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = entry{name: name, priority: priority, factory: factory}
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered names, highest priority first.
func Available() []string {
	entries := sorted()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Open creates the backend registered under name. An empty name
// behaves like Default.
func Open(name string, opts Options) (core.Backend, error) {
	if name == "" {
		return Default(opts)
	}
	registryMu.RLock()
	e, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrNotAvailable, "open %q", name)
	}
	return e.factory(opts)
}

// Default creates the highest priority backend that can be created.
func Default(opts Options) (core.Backend, error) {
	var errs error
	for _, e := range sorted() {
		b, err := e.factory(opts)
		if err == nil {
			return b, nil
		}
		errs = errors.CombineErrors(errs, errors.Wrapf(err, "open %q", e.name))
	}
	if errs != nil {
		return nil, errors.Mark(errs, ErrNotAvailable)
	}
	return nil, ErrNotAvailable
}

func sorted() []entry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	entries := make([]entry, 0, len(backends))
	for _, e := range backends {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if a.priority != b.priority {
			return b.priority - a.priority
		}
		return strings.Compare(a.name, b.name)
	})
	return entries
}
