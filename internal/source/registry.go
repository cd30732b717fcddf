package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry maps source names to adapter factories. It is constructed
// explicitly and handed to whoever needs to resolve sources; there is no
// process-wide instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for a source name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get resolves a source name to a fresh adapter instance. Unknown names are
// a caller-visible error, never a silent no-op.
func (r *Registry) Get(name string) (Scraper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}
	return factory(), nil
}

// Sources returns all registered source names, sorted.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run resolves name and executes one scrape.
func (r *Registry) Run(ctx context.Context, name string) (*Result, error) {
	scraper, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return scraper.Scrape(ctx), nil
}
