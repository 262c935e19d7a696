// internal/component/registry.go
//
// Component registry.
//
// Each concrete component lives under components/<name>, is constructed in
// cmd/web/main.go with its dependencies, and is added to a Registry.  Mount
// attaches every component's Routes() under its Pattern.  There are no
// init() side effects and no package-level registry, so tests build the
// exact router they need.

package component

import (
	"fmt"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Routes() mounts the component's endpoints relative to Pattern(), e.g:
//
//	r := chi.NewRouter()
//	r.Get("/", list)
//	r.Group(func(admin chi.Router) { ... })
//	return r
type Component interface {
	Name() string
	Pattern() string
	Routes() chi.Router
}

// Registry keeps components in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []Component
	names map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

// Register adds c.  Names must be unique.
func (reg *Registry) Register(c Component) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, dup := reg.names[c.Name()]; dup {
		return fmt.Errorf("component %q already registered", c.Name())
	}
	reg.names[c.Name()] = struct{}{}
	reg.order = append(reg.order, c)
	return nil
}

// All returns every registered component in registration order.
func (reg *Registry) All() []Component {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]Component, len(reg.order))
	copy(out, reg.order)
	return out
}

// Mount attaches each component's router at its pattern.  Patterns must be
// distinct; chi resolves overlapping prefixes by specificity, so a
// component at "/" only receives paths no other component claims.
func (reg *Registry) Mount(r chi.Router) {
	for _, c := range reg.All() {
		r.Mount(c.Pattern(), c.Routes())
	}
}
