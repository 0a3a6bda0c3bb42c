package typical

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the named-type table forward references resolve against.
// Names become resolvable the moment they are registered; delayed protocols
// pick them up on their next use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Type
}

// RegistryEntry is a single (name, type) association in a snapshot.
type RegistryEntry struct {
	Name string
	Type Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Type)}
}

// Register associates name with a description. Re-registering the same
// description is idempotent; conflicting re-registrations fail.
func (g *Registry) Register(name string, t Type) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.entries[name]; ok && prev.Token() != t.Token() {
		return fmt.Errorf("typical: %q is already registered as %s", name, prev.Token())
	}
	g.entries[name] = t
	return nil
}

// Lookup returns the description registered under name.
func (g *Registry) Lookup(name string) (Type, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.entries[name]
	return t, ok
}

// Entries returns a name-sorted snapshot for diagnostics.
func (g *Registry) Entries() []RegistryEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]RegistryEntry, 0, len(g.entries))
	for n, t := range g.entries {
		out = append(out, RegistryEntry{Name: n, Type: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of registered names.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Reset clears all registered names.
func (g *Registry) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.entries)
}
