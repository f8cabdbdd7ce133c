// Package embedded links the built-in modules and backend types into a
// binary. Importing it runs their init functions, which register with
// backends.DefaultRegistry and the backend type table.
package embedded

import (
	"github.com/FocuswithJustin/modelmgr/core/backends"
	"github.com/FocuswithJustin/modelmgr/core/backends/catalog"
	"github.com/FocuswithJustin/modelmgr/core/modules/raw"
)

// IsInitialized reports whether the built-in modules are registered.
func IsInitialized() bool {
	_, ok := backends.DefaultRegistry().ModuleIDs()[raw.ModuleID]
	return ok
}

// ModuleCount returns the number of registered module ids.
func ModuleCount() int {
	return len(backends.DefaultRegistry().ModuleIDs())
}

// BackendTypes returns the backend kinds available to configuration.
func BackendTypes() []backends.Kind {
	return backends.RegisteredTypes()
}

// Builtin lists the module ids and backend kinds this package links in.
var Builtin = struct {
	Modules  []string
	Backends []backends.Kind
}{
	Modules:  []string{raw.ModuleID},
	Backends: []backends.Kind{backends.KindLocal, catalog.Kind},
}
