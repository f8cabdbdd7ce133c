package manager

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
)

// Target is what Load reads a model from: a directory or archive path, an
// in-memory archive, or an open archive handle. Build one with Path, Bytes
// or Reader.
type Target interface {
	// Key is the singleton cache identity of the target as given.
	Key() string
	// String describes the target in errors and logs.
	String() string
	target()
}

type pathTarget struct{ path string }

// Path targets a model directory or an archive file on disk.
func Path(p string) Target { return pathTarget{path: p} }

func (t pathTarget) Key() string    { return t.path }
func (t pathTarget) String() string { return t.path }
func (pathTarget) target()          {}

type readerTarget struct {
	r    io.ReaderAt
	size int64
	key  string
	desc string
}

// Bytes targets an archive held in memory. The buffer is read through a
// bytes.Reader and never modified. Its cache identity is the buffer's base
// pointer and length, not its contents.
func Bytes(b []byte) Target {
	return readerTarget{
		r:    bytes.NewReader(b),
		size: int64(len(b)),
		key:  fmt.Sprintf("bytes:%p:%d", b, len(b)),
		desc: fmt.Sprintf("<%d byte buffer>", len(b)),
	}
}

// Reader targets an open archive of the given size. Its cache identity is
// the handle.
func Reader(r io.ReaderAt, size int64) Target {
	desc := fmt.Sprintf("<%T>", r)
	if f, ok := r.(*os.File); ok {
		desc = f.Name()
	}
	return readerTarget{
		r:    r,
		size: size,
		key:  fmt.Sprintf("reader:%p", r),
		desc: desc,
	}
}

func (t readerTarget) Key() string    { return t.key }
func (t readerTarget) String() string { return t.desc }
func (readerTarget) target()          {}

// TargetOf converts common values to a Target: strings are paths, byte
// slices are in-memory archives, and *bytes.Reader or *os.File values are
// open archives. Anything else is rejected.
func TargetOf(v any) (Target, error) {
	switch x := v.(type) {
	case Target:
		return x, nil
	case string:
		return Path(x), nil
	case []byte:
		return Bytes(x), nil
	case *bytes.Reader:
		return Reader(x, x.Size()), nil
	case *os.File:
		info, err := x.Stat()
		if err != nil {
			return nil, apperrors.NewIO("stat", x.Name(), err)
		}
		return Reader(x, info.Size()), nil
	case nil:
		return nil, apperrors.NewValidation("target", "is nil")
	default:
		return nil, apperrors.NewValidation("target", fmt.Sprintf("unsupported type %T", v))
	}
}

// resolvePath applies loadPath to a relative path that does not exist as
// given. The result is cleaned.
func resolvePath(p, loadPath string) string {
	if loadPath != "" && !filepath.IsAbs(p) {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			p = filepath.Join(loadPath, p)
		}
	}
	return filepath.Clean(p)
}
