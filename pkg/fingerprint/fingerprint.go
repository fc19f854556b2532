// Package fingerprint computes short content digests of a renderer's
// normalized intermediate output.
//
// A digest summarizes the simplified document the candidate renderer emits
// for an input. If the digest matches the one recorded for the last accepted
// run, the final raster is guaranteed identical too (the renderer is
// deterministic for identical intermediate input), so the expensive
// rasterize-and-diff path can be skipped entirely.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// DigestLen is the number of hex characters kept from the full hash.
// Eight characters give a 32-bit digest: at tens of thousands of corpus
// entries the birthday bound is acceptable for a test tool.
const DigestLen = 8

// Digest computes the truncated SHA-256 digest of data.
func Digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])[:DigestLen]
}

// DigestFile computes the digest of a file's contents.
func DigestFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Digest(data), nil
}
