// Package cas computes the content hashes recorded for model artifacts.
// Every artifact is identified by both SHA-256 and BLAKE3 so digests stay
// comparable with other content-addressed stores.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"

	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
)

// HashResult contains both SHA-256 and BLAKE3 hashes for a blob.
type HashResult struct {
	SHA256    string `json:"sha256"`
	BLAKE3    string `json:"blake3"`
	SizeBytes int64  `json:"size_bytes"`
}

// Blake3Hash computes the BLAKE3 hash of the given data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashReader streams r through both hash functions.
func HashReader(r io.Reader) (HashResult, error) {
	s := sha256.New()
	b := blake3.New()
	n, err := io.Copy(io.MultiWriter(s, b), r)
	if err != nil {
		return HashResult{}, err
	}
	return HashResult{
		SHA256:    hex.EncodeToString(s.Sum(nil)),
		BLAKE3:    hex.EncodeToString(b.Sum(nil)),
		SizeBytes: n,
	}, nil
}

// HashFile streams the file at path through both hash functions.
func HashFile(path string) (HashResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return HashResult{}, apperrors.NewIO("open", path, err)
	}
	defer f.Close()

	result, err := HashReader(f)
	if err != nil {
		return HashResult{}, apperrors.NewIO("hash", path, err)
	}
	return result, nil
}
