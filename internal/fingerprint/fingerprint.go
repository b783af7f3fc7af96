package fingerprint

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Sum returns a short hex fingerprint over the given parts.
//
// It hashes with BLAKE2b-256 and truncates to 10 bytes (20 hex chars). Parts
// are NUL-separated so adjacent values cannot collide by concatenation.
func Sum(parts ...string) string {
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:10])
}
