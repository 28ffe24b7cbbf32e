package util

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateToken returns n bytes of crypto-safe randomness encoded with the
// URL-safe base64 alphabet, so the result can sit in a link path untouched.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
