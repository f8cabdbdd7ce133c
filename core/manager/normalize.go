package manager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FocuswithJustin/modelmgr/core/backends"
	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
	"github.com/FocuswithJustin/modelmgr/core/manifest"
	"github.com/FocuswithJustin/modelmgr/core/models"
	"github.com/FocuswithJustin/modelmgr/internal/archive"
	"github.com/FocuswithJustin/modelmgr/internal/logging"
)

// artifactPrefix marks top-level archive entries, such as __MACOSX, that
// are never model directories.
const artifactPrefix = "__"

// checkPath fails with ErrPathNotExist when p is missing.
func checkPath(p string) (fs.FileInfo, error) {
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrPathNotExist, p, err)
		}
		return nil, apperrors.NewIO("stat", p, err)
	}
	return info, nil
}

// loadFromPath loads a path target that has already been checked to exist.
func (m *Manager) loadFromPath(p string, info fs.FileInfo, args backends.Args) (models.Model, error) {
	if info.IsDir() {
		return m.loadDir(p, args)
	}

	format, err := archive.DetectFile(p)
	if err != nil {
		return nil, err
	}
	if format == archive.FormatUnknown {
		return nil, apperrors.NewUnsupported("model path", p+" is neither a directory nor a supported archive")
	}
	return m.loadArchive(p, args, func(dest string) (archive.Format, int, error) {
		return archive.ExtractFile(p, dest)
	})
}

// loadDir dispatches a model directory. A missing manifest is reported
// against the caller's path.
func (m *Manager) loadDir(dir string, args backends.Args) (models.Model, error) {
	model, err := m.dispatch(dir, dir, args)
	if errors.Is(err, ErrManifestNotFound) {
		return nil, fmt.Errorf("%w: model path %s does not contain %s", ErrManifestNotFound, dir, manifest.ManifestFile)
	}
	return model, err
}

// loadReader loads an in-memory or open archive.
func (m *Manager) loadReader(t readerTarget, args backends.Args) (models.Model, error) {
	format, err := archive.Detect(t.r, t.size)
	if err != nil {
		return nil, err
	}
	if format == archive.FormatUnknown {
		return nil, apperrors.NewUnsupported("model target", t.desc+" is not a supported archive")
	}
	return m.loadArchive(t.desc, args, func(dest string) (archive.Format, int, error) {
		f, n, err := archive.Extract(t.r, t.size, dest)
		if err == nil {
			logging.ArchiveExtracted(t.desc, dest, string(f), n)
		}
		return f, n, err
	})
}

// loadArchive extracts into a temporary directory owned by this call and
// dispatches there. If the root has no manifest and exactly one top-level
// directory, that directory is tried once. The temporary directory is
// removed on return.
func (m *Manager) loadArchive(location string, args backends.Args, extract func(dest string) (archive.Format, int, error)) (models.Model, error) {
	tmp, err := os.MkdirTemp(m.tempDir, "modelmgr-")
	if err != nil {
		return nil, apperrors.NewIO("create temp dir", m.tempDir, err)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			logging.Warn("failed to remove extraction dir", "dir", tmp, "error", err)
		}
	}()

	if _, _, err := extract(tmp); err != nil {
		return nil, err
	}

	model, err := m.dispatch(tmp, location, args)
	if err == nil || !errors.Is(err, ErrManifestNotFound) {
		return model, err
	}

	nested, err := nestedDirs(tmp)
	if err != nil {
		return nil, err
	}
	if len(nested) != 1 {
		names := make([]string, len(nested))
		for i, d := range nested {
			names[i] = filepath.Base(d)
		}
		return nil, fmt.Errorf("%w: no %s at the root of %s and %d top-level directories [%s]",
			ErrNestedDirs, manifest.ManifestFile, location, len(nested), strings.Join(names, ", "))
	}

	logging.Debug("manifest not at archive root, trying nested dir", "location", location, "dir", filepath.Base(nested[0]))
	model, err = m.dispatch(nested[0], location, args)
	if errors.Is(err, ErrManifestNotFound) {
		return nil, fmt.Errorf("%w within top two levels of %s", ErrManifestNotFound, location)
	}
	return model, err
}

// nestedDirs lists the top-level directories of root, skipping names that
// start with artifactPrefix.
func nestedDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, apperrors.NewIO("read dir", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), artifactPrefix) {
			continue
		}
		dirs = append(dirs, filepath.Join(root, e.Name()))
	}
	sort.Strings(dirs)
	return dirs, nil
}
