// Package catalog is a shared load backend for models packaged as a single
// SQLite catalog. Any directory holding catalog.db loads without a
// config.yml; the module id comes from the catalog's metadata table.
//
// Schema:
//
//	CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT);
//	CREATE TABLE params (name TEXT PRIMARY KEY, value TEXT);
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/FocuswithJustin/modelmgr/core/backends"
	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
	"github.com/FocuswithJustin/modelmgr/core/models"
	"github.com/FocuswithJustin/modelmgr/core/sqlite"
	"github.com/FocuswithJustin/modelmgr/internal/logging"
	"github.com/FocuswithJustin/modelmgr/internal/validation"
)

// Kind is the catalog backend type.
const Kind backends.Kind = "CATALOG"

// DefaultFile is the catalog file name looked up in a model directory.
const DefaultFile = "catalog.db"

// MetaModuleID is the metadata key holding the module id.
const MetaModuleID = "module_id"

// Model is a model loaded from a catalog.
type Model struct {
	models.Base
	Path     string
	Metadata map[string]string
	Params   map[string]string
}

// Param returns a named parameter.
func (m *Model) Param(name string) (string, bool) {
	v, ok := m.Params[name]
	return v, ok
}

// ParamNames returns the parameter names, sorted.
func (m *Model) ParamNames() []string {
	names := make([]string, 0, len(m.Params))
	for n := range m.Params {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Backend loads catalog models.
type Backend struct {
	name string
	file string
}

// New returns a catalog backend. The config key "file" overrides the
// catalog file name.
func New(name string, config map[string]any) (*Backend, error) {
	if name == "" {
		name = string(Kind)
	}
	b := &Backend{name: name, file: DefaultFile}
	if v, ok := config["file"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, apperrors.NewValidation("file", fmt.Sprintf("must be a string, got %T", v))
		}
		if err := validation.ValidateFilename(s); err != nil {
			return nil, apperrors.NewValidation("file", err.Error())
		}
		b.file = s
	}
	return b, nil
}

// Kind returns Kind.
func (b *Backend) Kind() backends.Kind { return Kind }

// Name returns the instance name.
func (b *Backend) Name() string { return b.name }

// File returns the catalog file name the backend looks for.
func (b *Backend) File() string { return b.file }

// Load reads dir's catalog. Directories without one are declined with
// nil, nil.
func (b *Backend) Load(dir string, _ backends.Args) (any, error) {
	path := filepath.Join(dir, b.file)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperrors.NewIO("stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}

	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, apperrors.NewIO("open catalog", path, err)
	}
	defer db.Close()

	meta, err := readPairs(db, "SELECT key, value FROM metadata")
	if err != nil {
		return nil, apperrors.Wrapf(err, "read metadata from %s", path)
	}
	params, err := readPairs(db, "SELECT name, value FROM params")
	if err != nil {
		return nil, apperrors.Wrapf(err, "read params from %s", path)
	}

	id := meta[MetaModuleID]
	if id == "" {
		return nil, apperrors.NewParse("catalog", path, "metadata has no "+MetaModuleID)
	}

	logging.Debug("catalog read", "path", path, "module_id", id, "params", len(params))
	return &Model{
		Base:     models.NewBase(id),
		Path:     path,
		Metadata: meta,
		Params:   params,
	}, nil
}

func readPairs(db *sql.DB, query string) (map[string]string, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v.String
	}
	return out, rows.Err()
}

// Create writes a catalog at path with the given module id, metadata and
// params. An existing file is replaced.
func Create(path, moduleID string, metadata, params map[string]string) error {
	if moduleID == "" {
		return apperrors.NewValidation(MetaModuleID, "is required")
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewIO("remove", path, err)
	}

	db, err := sqlite.Open(path)
	if err != nil {
		return apperrors.NewIO("create catalog", path, err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT);
		CREATE TABLE params (name TEXT PRIMARY KEY, value TEXT);
	`); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	meta := map[string]string{MetaModuleID: moduleID}
	for k, v := range metadata {
		if k != MetaModuleID {
			meta[k] = v
		}
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT INTO metadata (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("failed to insert metadata %s: %w", k, err)
		}
	}
	for k, v := range params {
		if _, err := tx.Exec("INSERT INTO params (name, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("failed to insert param %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// Register makes the CATALOG type available to backend configuration.
func Register() {
	backends.RegisterType(Kind, func(name string, config map[string]any) (backends.Backend, error) {
		return New(name, config)
	})
}

func init() {
	Register()
}
