package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
	"github.com/FocuswithJustin/modelmgr/internal/logging"
)

// Injectable functions for testing
var (
	osMkdirAllExtract = os.MkdirAll
	osOpenFileExtract = os.OpenFile
	xzNewReader       = xz.NewReader
	gzipNewReader     = gzip.NewReader
)

// Extract unpacks the archive held by r into destDir, creating it if needed.
// It returns the detected format and the number of regular files written.
// Entries that would land outside destDir, and links of any kind, are skipped.
func Extract(r io.ReaderAt, size int64, destDir string) (Format, int, error) {
	format, err := Detect(r, size)
	if err != nil {
		return FormatUnknown, 0, err
	}
	if format == FormatUnknown {
		return FormatUnknown, 0, apperrors.NewUnsupported("archive format", "unrecognised magic bytes")
	}

	if err := osMkdirAllExtract(destDir, 0755); err != nil {
		return format, 0, apperrors.NewIO("create directory", destDir, err)
	}

	var n int
	switch format {
	case FormatZip:
		n, err = extractZip(r, size, destDir)
	default:
		n, err = extractTar(io.NewSectionReader(r, 0, size), format, destDir)
	}
	if err != nil {
		return format, n, err
	}
	return format, n, nil
}

// ExtractFile unpacks the archive at path into destDir.
func ExtractFile(path, destDir string) (Format, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, 0, apperrors.NewIO("open archive", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FormatUnknown, 0, apperrors.NewIO("stat archive", path, err)
	}

	format, n, err := Extract(f, info.Size(), destDir)
	if err != nil {
		return format, n, apperrors.Wrapf(err, "extract %s", path)
	}
	logging.ArchiveExtracted(path, destDir, string(format), n)
	return format, n, nil
}

func extractZip(r io.ReaderAt, size int64, destDir string) (int, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return 0, apperrors.NewIO("open zip", "", err)
	}

	var written int
	for _, f := range zr.File {
		destPath, ok := safeJoin(destDir, f.Name)
		if !ok {
			continue // Skip potentially malicious paths
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := osMkdirAllExtract(destPath, 0755); err != nil {
				return written, apperrors.NewIO("create directory", destPath, err)
			}
		case mode.IsRegular():
			rc, err := f.Open()
			if err != nil {
				return written, apperrors.NewIO("open zip entry", f.Name, err)
			}
			err = writeFile(destPath, rc, mode.Perm())
			rc.Close()
			if err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func extractTar(r io.Reader, format Format, destDir string) (int, error) {
	var src io.Reader = r
	switch format {
	case FormatTarGz:
		gzr, err := gzipNewReader(r)
		if err != nil {
			return 0, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		src = gzr
	case FormatTarXz:
		xzr, err := xzNewReader(r)
		if err != nil {
			return 0, fmt.Errorf("failed to create xz reader: %w", err)
		}
		src = xzr
	}

	tr := tar.NewReader(src)
	var written int
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return written, nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("failed to read tar header: %w", err)
		}

		destPath, ok := safeJoin(destDir, header.Name)
		if !ok {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := osMkdirAllExtract(destPath, 0755); err != nil {
				return written, apperrors.NewIO("create directory", destPath, err)
			}
		case tar.TypeReg:
			if err := writeFile(destPath, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return written, err
			}
			written++
		}
	}
}

// writeFile streams src into path, creating parent directories.
func writeFile(path string, src io.Reader, perm os.FileMode) error {
	if err := osMkdirAllExtract(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewIO("create parent directory", path, err)
	}
	if perm == 0 {
		perm = 0644
	}

	out, err := osOpenFileExtract(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0200)
	if err != nil {
		return apperrors.NewIO("create", path, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return apperrors.NewIO("write", path, err)
	}
	if err := out.Close(); err != nil {
		return apperrors.NewIO("close", path, err)
	}
	return nil
}

// safeJoin joins an archive entry name onto destDir and reports false when
// the result would escape destDir.
func safeJoin(destDir, name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	cleanPath := filepath.Clean(filepath.FromSlash(name))
	if cleanPath == "." || cleanPath == ".." || filepath.IsAbs(cleanPath) ||
		strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(destDir, cleanPath), true
}
