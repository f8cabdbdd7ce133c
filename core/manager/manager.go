// Package manager loads model instances from directories and archives.
//
// Load normalizes the target (extracting archives into a temporary
// directory and unwrapping at most one level of nesting), then walks the
// configured backends in priority order until one produces a model.
// Singleton loads are memoized per target under a lock held for the whole
// load, so concurrent singleton loads of one target run the loaders once.
package manager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/FocuswithJustin/modelmgr/core/backends"
	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
	"github.com/FocuswithJustin/modelmgr/core/manifest"
	"github.com/FocuswithJustin/modelmgr/core/models"
	"github.com/FocuswithJustin/modelmgr/internal/archive"
	"github.com/FocuswithJustin/modelmgr/internal/cache"
	"github.com/FocuswithJustin/modelmgr/internal/logging"
)

// Manager loads models and owns the singleton cache.
type Manager struct {
	backends *backends.Config
	registry *backends.Registry
	parser   manifest.Parser
	loadPath string
	tempDir  string

	cache *cache.Singleton[string, models.Model]
}

// CacheEntryInfo describes one singleton cache entry.
type CacheEntryInfo struct {
	ModuleID string `json:"module_id"`
	Type     string `json:"type"`
	Backend  string `json:"backend"`
	LoadID   string `json:"load_id,omitempty"`
}

// New returns a Manager. Without options it uses a default backend list
// (configured on first load), the default registry and the config.yml
// parser.
func New(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.backends == nil {
		m.backends = backends.NewConfig(nil)
	}
	if m.registry == nil {
		m.registry = backends.DefaultRegistry()
	}
	if m.parser == nil {
		m.parser = manifest.Default
	}
	m.cache = cache.New[string, models.Model]()
	return m
}

// Load returns a ready model for target. With WithSingleton(true), the
// instance is cached under the target's identity and later singleton loads
// of that target return it without loading again.
func (m *Manager) Load(target Target, opts ...LoadOption) (models.Model, error) {
	if target == nil {
		return nil, apperrors.NewValidation("target", "is nil")
	}
	var lo loadOptions
	for _, opt := range opts {
		opt(&lo)
	}

	key := target.Key()
	load, err := m.prepare(target, lo.args)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	model, hit, err := m.cache.GetOrLoad(lo.singleton, key, load)
	if err != nil {
		return nil, err
	}

	if hit {
		logging.CacheEvent("hit", key, m.cache.Len())
		return model, nil
	}
	if lo.singleton {
		logging.CacheEvent("store", key, m.cache.Len())
	}
	logging.ModelLoaded(target.String(), model.ModuleID(), model.LoadBackend().String(), time.Since(start),
		"singleton", lo.singleton)
	return model, nil
}

// prepare validates target and returns the load body to run.
func (m *Manager) prepare(target Target, args backends.Args) (func() (models.Model, error), error) {
	switch t := target.(type) {
	case pathTarget:
		p := resolvePath(t.path, m.loadPath)
		info, err := checkPath(p)
		if err != nil {
			return nil, err
		}
		return func() (models.Model, error) { return m.loadFromPath(p, info, args) }, nil
	case readerTarget:
		if t.r == nil {
			return nil, apperrors.NewValidation("target", "reader is nil")
		}
		return func() (models.Model, error) { return m.loadReader(t, args) }, nil
	default:
		return nil, apperrors.NewValidation("target", fmt.Sprintf("unsupported type %T", target))
	}
}

// ExtractArchive extracts archivePath into destination and returns the
// absolute destination. An existing destination is left alone unless
// force is set.
func (m *Manager) ExtractArchive(archivePath, destination string, force bool) (string, error) {
	dest, err := filepath.Abs(destination)
	if err != nil {
		return "", apperrors.NewIO("resolve", destination, err)
	}

	if !force {
		if _, err := os.Stat(dest); err == nil {
			logging.Info("skipped extraction, archive already extracted", "destination", dest)
			return dest, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", apperrors.NewIO("stat", dest, err)
		}
	}

	if _, _, err := archive.ExtractFile(archivePath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Resolve returns ref if it is already a model, loads it if it is a string
// naming an existing directory, and fails otherwise.
func (m *Manager) Resolve(ref any, opts ...LoadOption) (models.Model, error) {
	switch r := ref.(type) {
	case nil:
		return nil, apperrors.NewValidation("reference", "is nil")
	case models.Model:
		logging.Debug("returning model directly", "module_id", r.ModuleID())
		return r, nil
	case string:
		if info, err := os.Stat(r); err == nil && info.IsDir() {
			logging.Debug("resolving model from path", "path", r)
			return m.Load(Path(r), opts...)
		}
		return nil, fmt.Errorf("could not find model with name %q: %w", r, apperrors.ErrNotFound)
	default:
		return nil, apperrors.NewValidation("reference", fmt.Sprintf("unsupported type %T", ref))
	}
}

// CacheSnapshot describes every singleton cache entry by key.
func (m *Manager) CacheSnapshot() map[string]CacheEntryInfo {
	entries := m.cache.Snapshot()
	out := make(map[string]CacheEntryInfo, len(entries))
	for k, v := range entries {
		info := CacheEntryInfo{
			ModuleID: v.ModuleID(),
			Type:     fmt.Sprintf("%T", v),
			Backend:  v.LoadBackend().String(),
		}
		if id, ok := v.(models.Identified); ok {
			info.LoadID = id.LoadID()
		}
		out[k] = info
	}
	return out
}

// CacheClear drops every singleton cache entry.
func (m *Manager) CacheClear() {
	m.cache.Clear()
	logging.CacheEvent("clear", "", 0)
}

// ValidModuleIDs maps each registered module id to its implementing type.
func (m *Manager) ValidModuleIDs() map[string]string {
	return m.registry.ModuleIDs()
}

// Backends returns the configured backend list, configuring it if needed.
func (m *Manager) Backends() ([]backends.Backend, error) {
	return m.loadBackends()
}
