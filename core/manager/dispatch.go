package manager

import (
	"fmt"
	"reflect"

	"github.com/FocuswithJustin/modelmgr/core/backends"
	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
	"github.com/FocuswithJustin/modelmgr/core/manifest"
	"github.com/FocuswithJustin/modelmgr/core/models"
	"github.com/FocuswithJustin/modelmgr/internal/logging"
)

// Backend attempt outcomes, as logged.
const (
	outcomeLoaded      = "loaded"
	outcomeDeclined    = "declined"
	outcomeError       = "error"
	outcomeNoImpl      = "no_implementation"
	outcomeUnsupported = "unsupported_creation_backend"
)

// loadBackends returns the configured list, configuring defaults on first
// use.
func (m *Manager) loadBackends() ([]backends.Backend, error) {
	list := m.backends.ConfiguredLoadBackends()
	if len(list) > 0 {
		return list, nil
	}
	logging.Info("no backends configured, configuring from current settings")
	if err := m.backends.Configure(); err != nil {
		return nil, err
	}
	return m.backends.ConfiguredLoadBackends(), nil
}

// dispatch walks the backend list for dir; the first backend that returns a
// model wins. location names the caller's target in errors.
//
// Shared backends are tried directly. Per-module backends need the
// manifest, parsed once on first need; a missing manifest aborts with
// ErrManifestNotFound. Backend errors are collected and only reported if
// every backend fails.
func (m *Manager) dispatch(dir, location string, args backends.Args) (models.Model, error) {
	list, err := m.loadBackends()
	if err != nil {
		return nil, err
	}

	resolver := manifest.NewResolver(m.parser, dir)
	var attempts []error

	for i, b := range list {
		tag := backends.Tag(b)

		if shared, ok := b.(backends.SharedBackend); ok {
			out, err := shared.Load(dir, args)
			if err != nil {
				logging.BackendAttempt(location, i, tag.String(), outcomeError, "error", err)
				attempts = append(attempts, fmt.Errorf("backend %d (%s): %w", i, tag, err))
				continue
			}
			if isNil(out) {
				logging.BackendAttempt(location, i, tag.String(), outcomeDeclined)
				continue
			}
			model, ok := out.(models.Model)
			if !ok {
				return nil, apperrors.NewContract(tag.String(), "models.Model", fmt.Sprintf("%T", out))
			}
			model.SetLoadBackend(tag)
			logging.BackendAttempt(location, i, tag.String(), outcomeLoaded, "module_id", model.ModuleID())
			return model, nil
		}

		desc, err := resolver.Descriptor()
		if err != nil {
			return nil, err
		}

		impl, ok := m.registry.Lookup(desc.ModuleID)[b.Kind()]
		if !ok {
			logging.BackendAttempt(location, i, tag.String(), outcomeNoImpl, "module_id", desc.ModuleID)
			continue
		}
		if !impl.Supports(desc.CreationBackend, b.Kind()) {
			logging.BackendAttempt(location, i, tag.String(), outcomeUnsupported,
				"module_id", desc.ModuleID, "creation_backend", string(desc.CreationBackend))
			continue
		}

		model, err := impl.Load(dir, args, b)
		if err != nil {
			logging.BackendAttempt(location, i, tag.String(), outcomeError, "module_id", desc.ModuleID, "error", err)
			attempts = append(attempts, fmt.Errorf("backend %d (%s) %s: %w", i, tag, impl.TypeName, err))
			continue
		}
		if isNil(model) {
			logging.BackendAttempt(location, i, tag.String(), outcomeDeclined, "module_id", desc.ModuleID)
			continue
		}
		model.SetLoadBackend(tag)
		logging.BackendAttempt(location, i, tag.String(), outcomeLoaded, "module_id", desc.ModuleID)
		return model, nil
	}

	return nil, &LoadError{Location: location, ModuleID: resolver.ModuleID(), Attempts: attempts}
}

// isNil reports whether v is nil or a typed nil such as (*T)(nil). Loaders
// decline with either.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
