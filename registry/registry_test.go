package registry_test

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/rendersys/registry"
)

type resource struct {
	name      string
	destroyed *[]string
}

func (r *resource) Destroy() {
	*r.destroyed = append(*r.destroyed, r.name)
}

func newResource(name string, log *[]string) *resource {
	return &resource{name: name, destroyed: log}
}

func TestInsertRemove(t *testing.T) {
	var destroyed []string
	reg := registry.New[*resource]()

	a := reg.Insert(newResource("a", &destroyed))
	b := reg.Insert(newResource("b", &destroyed))
	require.True(t, reg.Contains(a))
	require.True(t, reg.Contains(b))
	require.Equal(t, 2, reg.Len())

	require.NoError(t, reg.Remove(a))
	assert.False(t, reg.Contains(a))
	assert.True(t, reg.Contains(b))
	assert.Equal(t, []string{"a"}, destroyed)

	err := reg.Remove(a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrUseAfterRelease))
	assert.Equal(t, []string{"a"}, destroyed, "double remove must not destroy twice")
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	var destroyed []string
	reg := registry.New[*resource]()

	a := reg.Insert(newResource("a", &destroyed))
	stale := a
	require.NoError(t, reg.Remove(a))

	c := reg.Insert(newResource("c", &destroyed))
	assert.False(t, reg.Contains(stale))
	assert.True(t, reg.Contains(c))
	assert.NotEqual(t, stale, c)

	_, err := reg.Get(stale)
	assert.True(t, errors.Is(err, registry.ErrUseAfterRelease))

	got, err := reg.Get(c)
	require.NoError(t, err)
	assert.Equal(t, "c", got.name)
}

func TestZeroHandle(t *testing.T) {
	reg := registry.New[*resource]()
	var h registry.Handle[*resource]
	assert.True(t, h.IsZero())
	assert.False(t, reg.Contains(h))
	assert.True(t, errors.Is(reg.Remove(h), registry.ErrUseAfterRelease))
}

func TestOldest(t *testing.T) {
	var destroyed []string
	reg := registry.New[*resource]()

	_, _, ok := reg.Oldest()
	assert.False(t, ok)

	a := reg.Insert(newResource("a", &destroyed))
	reg.Insert(newResource("b", &destroyed))
	require.NoError(t, reg.Remove(a))
	// reuses a's slot but is newer than b
	reg.Insert(newResource("c", &destroyed))

	_, oldest, ok := reg.Oldest()
	require.True(t, ok)
	assert.Equal(t, "b", oldest.name)
}

func TestClearDestroysNewestFirst(t *testing.T) {
	var destroyed []string
	reg := registry.New[*resource]()

	handles := []registry.Handle[*resource]{
		reg.Insert(newResource("a", &destroyed)),
		reg.Insert(newResource("b", &destroyed)),
		reg.Insert(newResource("c", &destroyed)),
	}

	assert.Equal(t, 3, reg.Clear())
	assert.Equal(t, []string{"c", "b", "a"}, destroyed)
	assert.Equal(t, 0, reg.Len())
	for _, h := range handles {
		assert.False(t, reg.Contains(h))
	}
	assert.Equal(t, 0, reg.Clear())
}

func TestEach(t *testing.T) {
	var destroyed []string
	reg := registry.New[*resource]()
	reg.Insert(newResource("a", &destroyed))
	b := reg.Insert(newResource("b", &destroyed))
	reg.Insert(newResource("c", &destroyed))
	require.NoError(t, reg.Remove(b))

	var names []string
	reg.Each(func(_ registry.Handle[*resource], r *resource) bool {
		names = append(names, r.name)
		return true
	})
	assert.Equal(t, []string{"a", "c"}, names)

	var visited int
	reg.Each(func(registry.Handle[*resource], *resource) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

// Contains must be true exactly for handles inserted and not yet removed,
// whatever the interleaving of operations.
func TestValidityLaw(t *testing.T) {
	var destroyed []string
	reg := registry.New[*resource]()
	rnd := rand.New(rand.NewSource(7))

	live := map[registry.Handle[*resource]]bool{}
	var released []registry.Handle[*resource]

	for i := 0; i < 5000; i++ {
		if rnd.Intn(3) > 0 || len(live) == 0 {
			h := reg.Insert(newResource("r", &destroyed))
			require.False(t, live[h], "handle %s issued twice", h)
			live[h] = true
			continue
		}
		for h := range live {
			require.NoError(t, reg.Remove(h))
			delete(live, h)
			released = append(released, h)
			break
		}
	}

	assert.Equal(t, len(live), reg.Len())
	for h := range live {
		assert.True(t, reg.Contains(h))
	}
	for _, h := range released {
		assert.False(t, reg.Contains(h))
		assert.True(t, errors.Is(reg.Remove(h), registry.ErrUseAfterRelease))
	}
}

type nopResource struct{}

func (nopResource) Destroy() {}

func BenchmarkInsertRemove(b *testing.B) {
	reg := registry.New[nopResource]()
	for idx := 0; idx < b.N; idx++ {
		h := reg.Insert(nopResource{})
		_ = reg.Remove(h)
	}
}

func BenchmarkContains(b *testing.B) {
	reg := registry.New[nopResource]()
	handles := make([]registry.Handle[nopResource], 1000)
	for i := range handles {
		handles[i] = reg.Insert(nopResource{})
	}
	b.ResetTimer()
	for idx := 0; idx < b.N; idx++ {
		reg.Contains(handles[idx%len(handles)])
	}
}
