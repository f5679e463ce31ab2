package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCredentialCost is the bcrypt work factor for login passwords.
const DefaultCredentialCost = bcrypt.DefaultCost

// credentialInput reduces password to a fixed 44-byte string. bcrypt only
// reads the first 72 bytes and rejects longer input.
func credentialInput(password []byte) []byte {
	sum := sha256.Sum256(password)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// HashCredential returns a salted bcrypt hash of password. Passwords of any
// length are accepted.
// password must be []byte for security (caller should zero it after use)
func HashCredential(password []byte, cost int) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password cannot be empty")
	}
	in := credentialInput(password)
	defer clear(in)

	hash, err := bcrypt.GenerateFromPassword(in, cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyCredential reports whether password matches hash. The comparison is
// constant-time with respect to the password.
func VerifyCredential(hash string, password []byte) bool {
	in := credentialInput(password)
	defer clear(in)
	return bcrypt.CompareHashAndPassword([]byte(hash), in) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// BurnCredentialCheck performs a bcrypt comparison against a throwaway hash so
// a lookup for an unknown user costs as much as one for a known user.
func BurnCredentialCheck(password []byte, cost int) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword(credentialInput([]byte("not-a-real-password")), cost)
	})
	in := credentialInput(password)
	defer clear(in)
	_ = bcrypt.CompareHashAndPassword(dummyHash, in)
}
