package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// HMACSHA256Base64 computes HMAC-SHA256 of message keyed with secret and
// returns it in standard (padded) Base64. Both inputs are taken as UTF-8.
func HMACSHA256Base64(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// EqualMAC compares two encoded MACs in constant time.
func EqualMAC(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
