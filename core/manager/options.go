package manager

import (
	"github.com/FocuswithJustin/modelmgr/core/backends"
	"github.com/FocuswithJustin/modelmgr/core/config"
	"github.com/FocuswithJustin/modelmgr/core/manifest"
)

// Option configures a Manager.
type Option func(*Manager)

// WithBackendConfig sets the configured backend list.
func WithBackendConfig(c *backends.Config) Option {
	return func(m *Manager) { m.backends = c }
}

// WithBackends uses exactly the given backends, in order.
func WithBackends(b ...backends.Backend) Option {
	return func(m *Manager) {
		c := backends.NewConfig(nil)
		c.Add(b...)
		m.backends = c
	}
}

// WithRegistry sets the module implementation registry.
func WithRegistry(r *backends.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// WithParser sets the manifest parser.
func WithParser(p manifest.Parser) Option {
	return func(m *Manager) { m.parser = p }
}

// WithLoadPath sets the prefix for relative paths that do not exist.
func WithLoadPath(p string) Option {
	return func(m *Manager) { m.loadPath = p }
}

// WithTempDir sets where archives are extracted during a load. Empty means
// the system temp dir.
func WithTempDir(dir string) Option {
	return func(m *Manager) { m.tempDir = dir }
}

// WithSettings applies load_path and the backend priority from s.
func WithSettings(s *config.Settings) Option {
	return func(m *Manager) {
		if s == nil {
			return
		}
		m.loadPath = s.LoadPath
		m.backends = s.BackendConfig()
	}
}

// LoadOption configures a single Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	singleton bool
	args      backends.Args
}

// WithSingleton shares the loaded instance with every other singleton load
// of the same target.
func WithSingleton(singleton bool) LoadOption {
	return func(o *loadOptions) { o.singleton = singleton }
}

// WithArgs passes arguments through to backend loaders.
func WithArgs(args backends.Args) LoadOption {
	return func(o *loadOptions) { o.args = args }
}
