package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// KeySize256 provides 256 bits of entropy (43 chars base64url).
const KeySize256 = 32

// GenerateKey creates a cryptographically secure random key of the given byte
// length, returned base64url-encoded without padding. It is suitable as seal
// key material or as a shared secret in development.
func GenerateKey(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("key size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random key: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns a short, deterministic SHA-256 fingerprint of a
// token so log lines can correlate tokens without revealing them.
func FingerprintToken(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
