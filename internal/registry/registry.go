// Package registry provides the central glue of the module system: it maps
// a module type name to its manifest and lazily loaded factory.
//
// Registrations are validated up front so that method dispatch can trust
// the declared method tables. Loading is deferred until a placement first
// needs the type, successful loads are cached, and a failed load is never
// cached; a later attempt starts clean.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/module"
)

// Module is the interface built-in module packages implement to register
// themselves with an application instance.
type Module interface {
	Register(r *Registry)
}

// Registration couples a module manifest with its lazy load hook. Load may
// perform expensive one-time setup (shader compilation, font loading) and
// may fail.
type Registration struct {
	Manifest *module.Manifest
	Load     func(ctx context.Context) (module.Factory, error)
}

// Registry holds all registered module types for one application instance.
type Registry struct {
	mu            sync.Mutex
	registrations map[string]*Registration
	loaded        map[string]module.Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		registrations: make(map[string]*Registration),
		loaded:        make(map[string]module.Factory),
	}
}

// Register adds a module type. Duplicate types and invalid manifests are
// programmer errors and panic, matching startup-time registration.
func (r *Registry) Register(reg *Registration) {
	if reg == nil || reg.Manifest == nil {
		panic("registry: nil registration")
	}
	if err := reg.Manifest.Validate(); err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	if reg.Load == nil {
		panic(fmt.Sprintf("registry: module '%s' registered without a load hook", reg.Manifest.Type))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.registrations[reg.Manifest.Type]; exists {
		panic(fmt.Sprintf("registry: module type '%s' already registered", reg.Manifest.Type))
	}
	r.registrations[reg.Manifest.Type] = reg
}

// Manifest returns the declared method table for a module type.
func (r *Registry) Manifest(moduleType string) (*module.Manifest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registrations[moduleType]
	if !ok {
		return nil, false
	}
	return reg.Manifest, true
}

// Resolve returns the factory for a module type, loading it on first use.
// A load failure is returned to the caller and deliberately not cached, so
// a retry on the next activation gets a fresh attempt.
func (r *Registry) Resolve(ctx context.Context, moduleType string) (module.Factory, error) {
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	if factory, ok := r.loaded[moduleType]; ok {
		r.mu.Unlock()
		return factory, nil
	}
	reg, ok := r.registrations[moduleType]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown module type '%s'", moduleType)
	}

	logger.Debug("Loading module implementation.", "type", moduleType)
	factory, err := reg.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load module '%s': %w", moduleType, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have finished loading first; keep the cached one.
	if cached, ok := r.loaded[moduleType]; ok {
		return cached, nil
	}
	r.loaded[moduleType] = factory
	return factory, nil
}

// Types returns all registered module type names, sorted.
func (r *Registry) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.registrations))
	for t := range r.registrations {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
