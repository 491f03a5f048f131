package display

import (
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrNoProvider is returned when no provider is registered under a name.
var ErrNoProvider = errors.New("display provider not registered")

// ProviderFactory opens a provider. The returned close func releases
// whatever the platform needed for enumeration.
type ProviderFactory func() (p Provider, close func(), err error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider makes a provider available by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := maps.Keys(providers)
	slices.Sort(names)
	return names
}

// Query opens the named provider, queries its displays and closes it.
func Query(name string) ([]Descriptor, error) {
	providersMu.RLock()
	factory, ok := providers[name]
	providersMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrNoProvider, "%q", name)
	}

	p, closeProvider, err := factory()
	if err != nil {
		return nil, errors.Wrapf(err, "open display provider %q", name)
	}
	defer closeProvider()
	return QueryDisplays(p)
}
