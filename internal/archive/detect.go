// Package archive detects, extracts and packs model archives.
// Supported layouts are zip, tar, tar.gz and tar.xz; detection is by magic
// bytes, never by file extension, so in-memory buffers work the same as files.
package archive

import (
	"bytes"
	"io"
	"os"

	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
)

// Format identifies an archive container.
type Format string

const (
	// FormatUnknown means the input is not a recognised archive.
	FormatUnknown Format = ""
	// FormatZip is a zip archive.
	FormatZip Format = "zip"
	// FormatTar is an uncompressed POSIX tar archive.
	FormatTar Format = "tar"
	// FormatTarGz is a gzip-compressed tar archive.
	FormatTarGz Format = "tar.gz"
	// FormatTarXz is an XZ/LZMA2-compressed tar archive.
	FormatTarXz Format = "tar.xz"
)

var (
	magicZip       = []byte{'P', 'K', 0x03, 0x04}
	magicZipEmpty  = []byte{'P', 'K', 0x05, 0x06}
	magicGzip      = []byte{0x1f, 0x8b}
	magicXZ        = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	magicUstar     = []byte("ustar")
	ustarMagicAt   = int64(257)
	detectReadSize = 262
)

// Detect inspects the leading bytes of r and reports the archive format.
// A reader too short to hold any magic number is FormatUnknown, not an error.
func Detect(r io.ReaderAt, size int64) (Format, error) {
	n := int64(detectReadSize)
	if size < n {
		n = size
	}
	if n <= 0 {
		return FormatUnknown, nil
	}

	head := make([]byte, n)
	read, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return FormatUnknown, apperrors.NewIO("read magic bytes", "", err)
	}
	head = head[:read]

	switch {
	case bytes.HasPrefix(head, magicZip), bytes.HasPrefix(head, magicZipEmpty):
		return FormatZip, nil
	case bytes.HasPrefix(head, magicXZ):
		return FormatTarXz, nil
	case bytes.HasPrefix(head, magicGzip):
		return FormatTarGz, nil
	case int64(len(head)) >= ustarMagicAt+int64(len(magicUstar)) &&
		bytes.Equal(head[ustarMagicAt:ustarMagicAt+int64(len(magicUstar))], magicUstar):
		return FormatTar, nil
	}
	return FormatUnknown, nil
}

// DetectFile reports the archive format of a regular file. Directories and
// missing paths are FormatUnknown with no error, so callers can fall through
// to directory handling.
func DetectFile(path string) (Format, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return FormatUnknown, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, apperrors.NewIO("open", path, err)
	}
	defer f.Close()

	return Detect(f, info.Size())
}
