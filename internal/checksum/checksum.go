// Package checksum fingerprints feed payloads and identifiers.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns the first n bytes of the SHA-256 digest of s, hex-encoded.
// n is clamped to the digest size.
func Short(s string, n int) string {
	h := sha256.Sum256([]byte(s))
	if n <= 0 || n > len(h) {
		n = len(h)
	}
	return hex.EncodeToString(h[:n])
}

// JSON encodes v and returns the encoding with its digest. encoding/json
// sorts map keys, so equal values give equal digests.
func JSON(v any) ([]byte, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("checksum: encode: %w", err)
	}
	return data, Sum(data), nil
}
