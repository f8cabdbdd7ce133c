// Package backends defines load backends, the per-process list of
// configured backends in priority order, and the registry mapping each
// module id to its per-backend implementations.
//
// A backend is one of two shapes:
//
//   - a SharedBackend attempts to load any artifact directly and never
//     needs the artifact's config.yml;
//   - any other Backend is per-module: the manager looks up the module's
//     Implementation registered for the backend's Kind.
package backends

import (
	"github.com/FocuswithJustin/modelmgr/core/models"
)

// Kind identifies a backend type (e.g., "LOCAL").
type Kind string

// KindLocal is the in-process backend, and the creation backend assumed
// when a manifest does not record one.
const KindLocal Kind = "LOCAL"

// Args are pass-through loader arguments.
type Args map[string]any

// Backend is a configured load backend.
type Backend interface {
	Kind() Kind
	Name() string
}

// SharedBackend can attempt to load any artifact directly.
type SharedBackend interface {
	Backend
	// Load returns nil, nil when the backend cannot read the artifact in dir.
	// A non-nil result must implement models.Model.
	Load(dir string, args Args) (any, error)
}

// IsShared reports whether b loads artifacts directly.
func IsShared(b Backend) bool {
	_, ok := b.(SharedBackend)
	return ok
}

// Tag returns the tag stamped on models loaded by b.
func Tag(b Backend) models.BackendTag {
	return models.BackendTag{Kind: string(b.Kind()), Name: b.Name()}
}
