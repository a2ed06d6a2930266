// Package checksum fingerprints vocabulary file contents for change detection
// and optimistic concurrency on save.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether data still has the digest want. An empty want
// matches anything.
func Matches(data []byte, want string) bool {
	return want == "" || Sum(data) == want
}
