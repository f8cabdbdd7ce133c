package archive

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
)

// Entry describes one member of an archive.
type Entry struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	IsDir bool   `json:"is_dir,omitempty"`
}

// Visitor is a callback function for iterating archive entries.
// Return true to stop iteration, false to continue.
type Visitor func(entry Entry) (stop bool, err error)

// Iterate walks the entries of the archive held by r without extracting them.
func Iterate(r io.ReaderAt, size int64, visitor Visitor) error {
	format, err := Detect(r, size)
	if err != nil {
		return err
	}

	switch format {
	case FormatUnknown:
		return apperrors.NewUnsupported("archive format", "unrecognised magic bytes")
	case FormatZip:
		zr, err := zip.NewReader(r, size)
		if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
			return apperrors.NewIO("open zip", "", err)
		}
		for _, f := range zr.File {
			stop, err := visitor(Entry{Name: f.Name, Size: int64(f.UncompressedSize64), IsDir: f.Mode().IsDir()})
			if err != nil || stop {
				return err
			}
		}
		return nil
	}

	var src io.Reader = io.NewSectionReader(r, 0, size)
	switch format {
	case FormatTarGz:
		gzr, err := gzipNewReader(src)
		if err != nil {
			return fmt.Errorf("gzip reader: %w", err)
		}
		defer gzr.Close()
		src = gzr
	case FormatTarXz:
		xzr, err := xzNewReader(src)
		if err != nil {
			return fmt.Errorf("xz reader: %w", err)
		}
		src = xzr
	}

	tr := tar.NewReader(src)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("read header: %w", err)
		}
		stop, err := visitor(Entry{Name: header.Name, Size: header.Size, IsDir: header.Typeflag == tar.TypeDir})
		if err != nil || stop {
			return err
		}
	}
}

// List returns the sorted entries of the archive at path.
func List(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIO("open archive", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, apperrors.NewIO("stat archive", path, err)
	}

	var entries []Entry
	err = Iterate(f, info.Size(), func(e Entry) (bool, error) {
		entries = append(entries, e)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
