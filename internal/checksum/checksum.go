// Package checksum computes content digests of library documents. Digests
// are lowercase hex SHA-256 and identify a package's exact bytes, so a
// session can tell whether a reload would change anything.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Sum returns the digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// File streams the file at path through the digest without holding it in
// memory. It returns the digest and the number of bytes read.
func File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Equal reports whether data hashes to digest.
func Equal(data []byte, digest string) bool {
	return digest != "" && Sum(data) == digest
}
