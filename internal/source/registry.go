// Package source holds the adapter registry and the security-code rules
// shared by the concrete source adapters.
package source

import (
	"fmt"

	"DisclosureNotifier/internal/ports"
)

// Registry keeps a mapping from adapter names to their implementations.
type Registry struct {
	sources map[string]ports.DocumentSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.DocumentSource{}}
}

// Register adds or replaces a source adapter.
func (r *Registry) Register(src ports.DocumentSource) {
	if r.sources == nil {
		r.sources = map[string]ports.DocumentSource{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns an adapter by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.DocumentSource, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// ResolveOrder maps a priority list of names to adapters, skipping names
// that are not registered (e.g. an adapter disabled by configuration).
func (r *Registry) ResolveOrder(names []string) []ports.DocumentSource {
	ordered := make([]ports.DocumentSource, 0, len(names))
	for _, name := range names {
		if src, ok := r.sources[name]; ok {
			ordered = append(ordered, src)
		}
	}
	return ordered
}
