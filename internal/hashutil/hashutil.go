// Package hashutil derives fixed-length keys from free text.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the hex SHA-256 of the trimmed input.
func SHA256Hex(input string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(input)))
	return hex.EncodeToString(sum[:])
}

// Key builds "namespace:<hash>" from case- and whitespace-insensitive parts,
// so equivalent user queries share one cache entry.
func Key(namespace string, parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return namespace + ":" + SHA256Hex(strings.Join(normalized, "\x00"))
}
