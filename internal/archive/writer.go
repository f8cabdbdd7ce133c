package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"

	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
)

// packEpoch is stamped on every entry so packing the same tree twice yields
// identical archives.
var packEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// entryWriter abstracts the zip and tar writers used by Pack.
type entryWriter interface {
	addDir(name string) error
	addFile(name string, info os.FileInfo, src io.Reader) error
	Close() error
}

// Pack writes the contents of srcDir into a new archive at dstPath.
// When baseDir is non-empty every entry is nested under it, which mirrors
// the layout produced by zipping a folder rather than its contents.
func Pack(srcDir, dstPath string, format Format, baseDir string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer outFile.Close()

	w, err := newEntryWriter(outFile, format)
	if err != nil {
		return err
	}

	if baseDir != "" {
		if err := w.addDir(baseDir); err != nil {
			w.Close()
			return fmt.Errorf("failed to create archive: %w", err)
		}
	}

	err = filepath.Walk(srcDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		name := filepath.ToSlash(relPath)
		if baseDir != "" {
			name = path.Join(baseDir, name)
		}

		if info.IsDir() {
			return w.addDir(name)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		file, err := os.Open(p)
		if err != nil {
			return err
		}
		defer file.Close()
		return w.addFile(name, info, file)
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("failed to create archive: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func newEntryWriter(out io.Writer, format Format) (entryWriter, error) {
	switch format {
	case FormatZip:
		return &zipEntryWriter{zw: zip.NewWriter(out)}, nil
	case FormatTar:
		return &tarEntryWriter{tw: tar.NewWriter(out)}, nil
	case FormatTarGz:
		gw := gzip.NewWriter(out)
		return &tarEntryWriter{tw: tar.NewWriter(gw), compressor: gw}, nil
	case FormatTarXz:
		xw, err := xz.NewWriter(out)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return &tarEntryWriter{tw: tar.NewWriter(xw), compressor: xw}, nil
	default:
		return nil, apperrors.NewUnsupported("archive format", string(format))
	}
}

type zipEntryWriter struct {
	zw *zip.Writer
}

func (z *zipEntryWriter) addDir(name string) error {
	_, err := z.zw.CreateHeader(&zip.FileHeader{
		Name:     name + "/",
		Modified: packEpoch,
	})
	return err
}

func (z *zipEntryWriter) addFile(name string, info os.FileInfo, src io.Reader) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate
	header.Modified = packEpoch

	w, err := z.zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func (z *zipEntryWriter) Close() error {
	return z.zw.Close()
}

type tarEntryWriter struct {
	tw         *tar.Writer
	compressor io.WriteCloser
}

func (t *tarEntryWriter) addDir(name string) error {
	return t.tw.WriteHeader(&tar.Header{
		Name:     name + "/",
		Typeflag: tar.TypeDir,
		Mode:     0755,
		ModTime:  packEpoch,
	})
}

func (t *tarEntryWriter) addFile(name string, info os.FileInfo, src io.Reader) error {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name
	header.ModTime = packEpoch

	if err := t.tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(t.tw, src)
	return err
}

func (t *tarEntryWriter) Close() error {
	if err := t.tw.Close(); err != nil {
		return err
	}
	if t.compressor != nil {
		return t.compressor.Close()
	}
	return nil
}
