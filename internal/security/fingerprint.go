package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintToken returns a SHA-256 hash of the full token string, hex-encoded.
// The fingerprint is a storage and lookup key for revocation records; it makes
// a token revocable even when its jti cannot be extracted. It proves nothing
// about authenticity; that is the codec signature's job.
func FingerprintToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
