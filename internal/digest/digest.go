// Package digest fingerprints downloaded attachment bytes.
package digest

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Size is the length of a Sum in bytes.
const Size = blake2b.Size256

const prefix = "blake2b-256:"

// Sum is a BLAKE2b-256 digest.
type Sum [Size]byte

// Of returns the BLAKE2b-256 digest of data.
func Of(data []byte) Sum {
	return blake2b.Sum256(data)
}

// Hex encodes the digest as lowercase hex.
func (s Sum) Hex() string {
	return hex.EncodeToString(s[:])
}

// Base64URL encodes the digest as URL-safe base64 without padding.
func (s Sum) Base64URL() string {
	return base64.RawURLEncoding.EncodeToString(s[:])
}

// String returns the hex form prefixed with the algorithm name.
func (s Sum) String() string {
	return prefix + s.Hex()
}

// Parse decodes a digest from the output of String, Hex or Base64URL.
func Parse(s string) (Sum, error) {
	var sum Sum
	s = strings.TrimPrefix(s, prefix)

	data, err := hex.DecodeString(s)
	if err != nil || len(data) != Size {
		data, err = base64.RawURLEncoding.DecodeString(s)
	}
	if err != nil {
		return sum, ErrInvalidDigest
	}
	if len(data) != Size {
		return sum, ErrInvalidDigest
	}
	copy(sum[:], data)
	return sum, nil
}

// Verify reports whether data hashes to want.
func Verify(data []byte, want Sum) bool {
	return Of(data) == want
}
