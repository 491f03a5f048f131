package backend_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/rendersys/backend"
	"github.com/devblok/rendersys/backend/noop"
	"github.com/devblok/rendersys/core"
)

func register(t *testing.T, name string, priority int, factory backend.Factory) {
	t.Helper()
	backend.Register(name, priority, factory)
	t.Cleanup(func() { backend.Unregister(name) })
}

func failing(backend.Options) (core.Backend, error) {
	return nil, errors.New("no loader")
}

func TestNoopIsRegistered(t *testing.T) {
	assert.Contains(t, backend.Available(), noop.Name)

	b, err := backend.Open(noop.Name, backend.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Noop", b.Driver().Name())
}

func TestAvailableOrder(t *testing.T) {
	register(t, "zz-high", 1000, failing)
	register(t, "aa-high", 1000, failing)

	names := backend.Available()
	require.GreaterOrEqual(t, len(names), 3)
	assert.Equal(t, []string{"aa-high", "zz-high"}, names[:2])
	assert.Equal(t, noop.Name, names[len(names)-1])
}

func TestDefaultSkipsFailingBackends(t *testing.T) {
	register(t, "broken", 1000, failing)

	var picked *noop.Backend
	register(t, "scripted", 900, func(backend.Options) (core.Backend, error) {
		picked = noop.New(noop.Options{})
		return picked, nil
	})

	b, err := backend.Open("", backend.Options{})
	require.NoError(t, err)
	assert.Same(t, picked, b)
}

func TestOpenUnknown(t *testing.T) {
	_, err := backend.Open("directx", backend.Options{})
	assert.True(t, errors.Is(err, backend.ErrNotAvailable))
}

func TestDefaultWithNothingWorking(t *testing.T) {
	backend.Unregister(noop.Name)
	t.Cleanup(func() {
		backend.Register(noop.Name, 0, func(backend.Options) (core.Backend, error) {
			return noop.New(noop.Options{}), nil
		})
	})
	for _, name := range backend.Available() {
		backend.Unregister(name)
	}
	register(t, "broken", 10, failing)

	_, err := backend.Default(backend.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrNotAvailable))
	assert.Contains(t, err.Error(), "no loader")
}
