package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MinSecretSize is the smallest signing secret NewSecret hands out, in bytes.
const MinSecretSize = 16

// NewSecret returns size random bytes hex-encoded, for use as the token
// signing secret.
func NewSecret(size int) (string, error) {
	if size < MinSecretSize {
		return "", fmt.Errorf("secret size %d is below %d bytes", size, MinSecretSize)
	}

	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
