// Package models defines the capability every loaded model exposes to the
// manager: its module identity and the backend that loaded it.
package models

import (
	"time"

	"github.com/google/uuid"
)

// BackendTag records which configured backend produced an instance.
type BackendTag struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

// String returns the kind, with the instance name when it differs.
func (t BackendTag) String() string {
	if t.Name == "" || t.Name == t.Kind {
		return t.Kind
	}
	return t.Kind + "/" + t.Name
}

// Model is a loaded, ready-to-use model instance.
type Model interface {
	// ModuleID returns the logical module type of the model.
	ModuleID() string
	// LoadBackend returns the backend that loaded the model, zero if unset.
	LoadBackend() BackendTag
	// SetLoadBackend is called by the manager once a backend succeeds.
	SetLoadBackend(tag BackendTag)
}

// Identified is implemented by models that carry a per-instance load id.
type Identified interface {
	LoadID() string
}

// Base is embedded by model implementations to satisfy Model.
type Base struct {
	moduleID string
	backend  BackendTag
	loadID   string
	loadedAt time.Time
}

// NewBase returns a Base for moduleID stamped with a fresh load id.
func NewBase(moduleID string) Base {
	return Base{
		moduleID: moduleID,
		loadID:   uuid.NewString(),
		loadedAt: time.Now(),
	}
}

// ModuleID returns the module id.
func (b *Base) ModuleID() string { return b.moduleID }

// LoadBackend returns the backend tag.
func (b *Base) LoadBackend() BackendTag { return b.backend }

// SetLoadBackend sets the backend tag.
func (b *Base) SetLoadBackend(tag BackendTag) { b.backend = tag }

// LoadID returns the id assigned when the instance was built.
func (b *Base) LoadID() string { return b.loadID }

// LoadedAt returns when the instance was built.
func (b *Base) LoadedAt() time.Time { return b.loadedAt }
