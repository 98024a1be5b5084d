package internal

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
)

const rawTokenEntropy = 64

// NewRawToken returns 40 hex characters: the SHA-1 of 64 random bytes.
func NewRawToken() (string, error) {
	var seed [rawTokenEntropy]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return "", err
	}
	sum := sha1.Sum(seed[:])
	return hex.EncodeToString(sum[:]), nil
}

// Equal compares two tokens in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
