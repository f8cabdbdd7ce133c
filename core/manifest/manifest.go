// Package manifest reads the config.yml at the top level of a model
// directory into a Descriptor naming the module and its creation backend.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/modelmgr/core/backends"
	"github.com/FocuswithJustin/modelmgr/core/cas"
	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
)

// ManifestFile is the manifest's file name inside a model directory.
const ManifestFile = "config.yml"

// Well-known manifest keys.
const (
	KeyModuleID     = "module_id"
	KeyModelBackend = "model_backend"
	KeyName         = "name"
	KeyVersion      = "version"
)

// ErrManifestNotFound is returned when a directory has no config.yml.
var ErrManifestNotFound = fmt.Errorf("manifest %w", apperrors.ErrNotFound)

// Descriptor is the parsed manifest of one model directory.
type Descriptor struct {
	ModuleID        string         `json:"module_id"`
	CreationBackend backends.Kind  `json:"creation_backend"`
	Name            string         `json:"name,omitempty"`
	Version         string         `json:"version,omitempty"`
	Raw             map[string]any `json:"-"`
	Digest          string         `json:"digest"`
	Dir             string         `json:"dir"`
}

// Get returns a raw manifest value.
func (d *Descriptor) Get(key string) (any, bool) {
	v, ok := d.Raw[key]
	return v, ok
}

// Parser reads the descriptor of a directory.
type Parser interface {
	Parse(dir string) (*Descriptor, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(dir string) (*Descriptor, error)

// Parse calls f(dir).
func (f ParserFunc) Parse(dir string) (*Descriptor, error) { return f(dir) }

// Default is the config.yml parser.
var Default Parser = ParserFunc(Parse)

// Parse reads dir/config.yml. A missing file yields an error wrapping
// ErrManifestNotFound.
func Parse(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, apperrors.NewIO("read", path, err)
	}
	d, err := Decode(data)
	if err != nil {
		var pe *apperrors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	d.Dir = dir
	return d, nil
}

// Decode parses manifest bytes.
func Decode(data []byte) (*Descriptor, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		pe := apperrors.NewParse("manifest", "", err.Error())
		pe.Err = err
		return nil, pe
	}
	if raw == nil {
		raw = map[string]any{}
	}

	d := &Descriptor{
		Raw:             raw,
		Digest:          cas.Blake3Hash(data),
		CreationBackend: backends.KindLocal,
	}

	id, ok := stringValue(raw, KeyModuleID)
	if !ok || id == "" {
		return nil, apperrors.NewParse("manifest", "", "missing "+KeyModuleID)
	}
	d.ModuleID = id

	if b, ok := stringValue(raw, KeyModelBackend); ok && b != "" {
		d.CreationBackend = backends.Kind(strings.ToUpper(b))
	}
	d.Name, _ = stringValue(raw, KeyName)
	d.Version, _ = stringValue(raw, KeyVersion)
	return d, nil
}

// Write serializes d.Raw, with the typed fields applied, to dir/config.yml.
func Write(dir string, d *Descriptor) error {
	out := make(map[string]any, len(d.Raw)+4)
	for k, v := range d.Raw {
		out[k] = v
	}
	out[KeyModuleID] = d.ModuleID
	if d.CreationBackend != "" {
		out[KeyModelBackend] = string(d.CreationBackend)
	}
	if d.Name != "" {
		out[KeyName] = d.Name
	}
	if d.Version != "" {
		out[KeyVersion] = d.Version
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return apperrors.Wrap(err, "encode manifest")
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.NewIO("write", path, err)
	}
	return nil
}

// Exists reports whether dir has a manifest file.
func Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ManifestFile))
	return err == nil && !info.IsDir()
}

func stringValue(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	default:
		return fmt.Sprint(s), true
	}
}
