package project

import (
	"crypto/sha256"
	"os"
)

// Digest is a fixed 256-bit content hash.
type Digest [32]byte

// IsZero reports whether the digest is the all-zero value.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// HashBytes hashes raw manifest bytes.
func HashBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// HashFile hashes the contents of the file at path.
func HashFile(path string) (Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return HashBytes(data), nil
}
