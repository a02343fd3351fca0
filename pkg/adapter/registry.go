package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dbdeck/dbdeck/pkg/core"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[core.Kind]func(*slog.Logger) Adapter)
)

// Register adds an adapter factory to the registry.
// Called by adapter implementations in their init() functions.
func Register(kind core.Kind, factory func(*slog.Logger) Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// Get retrieves an adapter factory by kind.
func Get(kind core.Kind) (func(*slog.Logger) Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[kind]
	return f, ok
}

// New creates a disconnected adapter for the given kind. The logger is
// passed to the adapter constructor (nil uses a discard logger).
// An unregistered kind yields a ConnectionError with the
// unsupported-dialect kind.
func New(kind core.Kind, logger *slog.Logger) (Adapter, error) {
	factory, ok := Get(kind)
	if !ok {
		return nil, core.NewConnectionError(core.ConnUnsupportedDialect,
			fmt.Errorf("no adapter registered for %q (available: %v)", kind, List()))
	}
	return factory(logger), nil
}

// List returns all registered kinds (sorted).
func List() []core.Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]core.Kind, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// IsRegistered checks whether an adapter kind is registered.
func IsRegistered(kind core.Kind) bool {
	_, ok := Get(kind)
	return ok
}
