package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// Fingerprint returns a short digest of a base64 public key for display and
// logging. A malformed key fingerprints its raw text; callers only ever show
// the result to humans.
func Fingerprint(publicKey string) string {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		raw = []byte(publicKey)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:10])
}
