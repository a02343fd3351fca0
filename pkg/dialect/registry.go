package dialect

import (
	"sort"
	"sync"

	"github.com/dbdeck/dbdeck/pkg/core"
)

var (
	dialectsMu sync.RWMutex
	dialects   = make(map[core.Kind]Dialect)
)

// Register registers a dialect in the global registry.
// Called by family implementations in their init() functions.
func Register(d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[d.Kind()] = d
}

// Get returns the dialect for a database kind.
func Get(kind core.Kind) (Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[kind]
	return d, ok
}

// List returns all registered kinds (sorted).
func List() []core.Kind {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	kinds := make([]core.Kind, 0, len(dialects))
	for kind := range dialects {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
