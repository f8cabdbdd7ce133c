// Package config loads modelmgr settings from YAML files and the
// environment. Sources apply in order, later ones winning: built-in
// defaults, files passed to Load, files named by config_files, then
// MODELMGR_* environment variables.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/modelmgr/core/backends"
	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvLoadPath    = "MODELMGR_LOAD_PATH"
	EnvLogLevel    = "MODELMGR_LOG_LEVEL"
	EnvLogFormat   = "MODELMGR_LOG_FORMAT"
	EnvBackends    = "MODELMGR_BACKENDS"
	EnvConfigFiles = "MODELMGR_CONFIG_FILES"
)

// Settings is the merged configuration.
type Settings struct {
	// LoadPath prefixes relative load targets that do not exist as given.
	LoadPath string `yaml:"load_path"`
	// ConfigFiles are extra YAML files merged after the initial sources.
	ConfigFiles []string `yaml:"config_files"`
	Backends    Backends `yaml:"backends"`
	Log         Log      `yaml:"log"`
}

// Backends configures the load backend list.
type Backends struct {
	// Priority is the ordered backend list. The first backend that loads a
	// model wins.
	Priority []backends.Spec `yaml:"priority"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Backends: Backends{Priority: backends.DefaultPriority()},
		Log:      Log{Level: "info", Format: "json"},
	}
}

// Load builds Settings from defaults, the given files, any config_files they
// or the environment name, and finally the environment. Missing files passed
// explicitly are an error.
func Load(files ...string) (*Settings, error) {
	s := Default()
	for _, f := range files {
		if err := s.MergeFile(f); err != nil {
			return nil, err
		}
	}

	extra := s.ConfigFiles
	if env := os.Getenv(EnvConfigFiles); env != "" {
		extra = append(extra, splitList(env)...)
	}
	for _, f := range extra {
		if err := s.MergeFile(f); err != nil {
			return nil, err
		}
	}

	s.ApplyEnv(os.Getenv)
	return s, nil
}

// MergeFile decodes the YAML file at path over s. Keys absent from the file
// keep their current values; lists present in the file replace the old ones.
func (s *Settings) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.NewNotFound("config file", path)
		}
		return apperrors.NewIO("read", path, err)
	}
	return s.Merge(data, path)
}

// Merge decodes YAML data over s. source names the data in errors.
func (s *Settings) Merge(data []byte, source string) error {
	if err := yaml.Unmarshal(data, s); err != nil {
		pe := apperrors.NewParse("config", source, err.Error())
		pe.Err = err
		return pe
	}
	return nil
}

// ApplyEnv overrides settings from environment variables read via getenv.
// MODELMGR_BACKENDS is a comma separated list of backend types, replacing
// the configured priority list.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvLoadPath); v != "" {
		s.LoadPath = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		s.Log.Level = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		s.Log.Format = v
	}
	if v := getenv(EnvBackends); v != "" {
		var specs []backends.Spec
		for _, t := range splitList(v) {
			specs = append(specs, backends.Spec{Type: t})
		}
		if len(specs) > 0 {
			s.Backends.Priority = specs
		}
	}
}

// BackendConfig returns an unconfigured backend list for the priority specs.
func (s *Settings) BackendConfig() *backends.Config {
	return backends.NewConfig(s.Backends.Priority)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
