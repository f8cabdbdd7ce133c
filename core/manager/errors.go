package manager

import (
	"errors"
	"fmt"

	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
	"github.com/FocuswithJustin/modelmgr/core/manifest"
)

var (
	// ErrPathNotExist is returned before any backend runs when a target
	// directory or file is missing.
	ErrPathNotExist = errors.New("model path does not exist")
	// ErrManifestNotFound is returned when a per-module backend needs a
	// manifest the directory does not have.
	ErrManifestNotFound = manifest.ErrManifestNotFound
	// ErrNestedDirs is returned when an archive has no root manifest and
	// does not unpack to exactly one directory.
	ErrNestedDirs = fmt.Errorf("archive manifest %w due to nested dirs", apperrors.ErrNotFound)
	// ErrLoadFailed is matched by every *LoadError.
	ErrLoadFailed = errors.New("unable to load model")
)

// LoadError reports that no configured backend produced a model.
type LoadError struct {
	Location string
	ModuleID string
	// Attempts holds the errors returned by individual backends.
	Attempts []error
}

func (e *LoadError) Error() string {
	id := e.ModuleID
	if id == "" {
		id = "unknown"
	}
	msg := fmt.Sprintf("unable to load model from %s with module id %s", e.Location, id)
	if n := len(e.Attempts); n > 0 {
		msg += fmt.Sprintf(": %d backend error(s): %v", n, errors.Join(e.Attempts...))
	}
	return msg
}

// Unwrap exposes ErrLoadFailed and every attempt error.
func (e *LoadError) Unwrap() []error {
	out := make([]error, 0, len(e.Attempts)+1)
	out = append(out, ErrLoadFailed)
	return append(out, e.Attempts...)
}
