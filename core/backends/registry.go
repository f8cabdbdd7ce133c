package backends

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
	"github.com/FocuswithJustin/modelmgr/core/models"
)

// LoaderFunc loads the artifact in dir with a specific backend. It returns
// nil, nil when the implementation declines the artifact.
type LoaderFunc func(dir string, args Args, backend Backend) (models.Model, error)

// Implementation is a module's loader for one backend kind.
type Implementation struct {
	// TypeName names the implementing type for diagnostics.
	TypeName string
	// Load builds the model.
	Load LoaderFunc
	// SupportedLoadBackends lists the creation backends whose artifacts this
	// implementation can read. Empty means only artifacts created with the
	// kind the implementation is registered under.
	SupportedLoadBackends []Kind
}

// Supports reports whether an artifact created with creation can be read by
// this implementation when registered under own.
func (i Implementation) Supports(creation, own Kind) bool {
	if len(i.SupportedLoadBackends) == 0 {
		return creation == own
	}
	for _, k := range i.SupportedLoadBackends {
		if k == creation {
			return true
		}
	}
	return false
}

// Registry maps module id -> backend kind -> Implementation.
type Registry struct {
	mu    sync.RWMutex
	impls map[string]map[Kind]Implementation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{impls: make(map[string]map[Kind]Implementation)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry that module packages
// register into from init.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds impl for moduleID under kind.
func (r *Registry) Register(moduleID string, kind Kind, impl Implementation) error {
	if moduleID == "" {
		return apperrors.NewValidation("module_id", "is required")
	}
	if kind == "" {
		return apperrors.NewValidation("backend kind", "is required")
	}
	if impl.Load == nil {
		return apperrors.NewValidation("loader", fmt.Sprintf("is required for %s/%s", moduleID, kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byKind, ok := r.impls[moduleID]
	if !ok {
		byKind = make(map[Kind]Implementation)
		r.impls[moduleID] = byKind
	}
	if _, exists := byKind[kind]; exists {
		return fmt.Errorf("%w: implementation of %s for backend %s", apperrors.ErrAlreadyExists, moduleID, kind)
	}
	byKind[kind] = impl
	return nil
}

// MustRegister is Register for init functions; it panics on error.
func (r *Registry) MustRegister(moduleID string, kind Kind, impl Implementation) {
	if err := r.Register(moduleID, kind, impl); err != nil {
		panic(err)
	}
}

// Lookup returns a copy of the implementations registered for moduleID.
// Unknown module ids yield an empty map.
func (r *Registry) Lookup(moduleID string) map[Kind]Implementation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Kind]Implementation, len(r.impls[moduleID]))
	for k, v := range r.impls[moduleID] {
		out[k] = v
	}
	return out
}

// ModuleIDs maps every registered module id to the type name of its
// implementation, preferring the LOCAL one.
func (r *Registry) ModuleIDs() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.impls))
	for id, byKind := range r.impls {
		if impl, ok := byKind[KindLocal]; ok {
			out[id] = impl.TypeName
			continue
		}
		kinds := make([]Kind, 0, len(byKind))
		for k := range byKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		if len(kinds) > 0 {
			out[id] = byKind[kinds[0]].TypeName
		}
	}
	return out
}
