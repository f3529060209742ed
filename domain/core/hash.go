package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Fingerprint identifies immutable input data for run manifests
type Fingerprint Hash

func NewFingerprint(data []byte) Fingerprint { return Fingerprint(NewHash(data)) }

func (f Fingerprint) String() string { return Hash(f).String() }

// HashStrings hashes an ordered sequence of strings into a single digest
func HashStrings(parts ...string) Hash {
	var data strings.Builder
	for _, p := range parts {
		data.WriteString(p)
		data.WriteByte(0)
	}
	return NewHash([]byte(data.String()))
}
