// Package password derives and verifies salted PBKDF2-HMAC-SHA512 password hashes.
//
// A stored hash is a fixed layout blob: the 64 byte derived key followed by the
// salt. Verify assumes everything after the key is salt, so the salt size used
// at derive time only has to be consistent with itself.
package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	KeySize           = 64
	DefaultSaltSize   = 16
	DefaultIterations = 100000
)

var (
	ErrVerificationFailed = errors.New("password verification failed")
	ErrInvalidInput       = errors.New("invalid password hashing input")
)

// Derive hashes password with a fresh 16 byte salt and 100000 iterations.
func Derive(password string) ([]byte, error) {
	return DeriveWith(password, DefaultSaltSize, DefaultIterations)
}

// DeriveWith hashes password with a random salt of saltSize bytes and returns key || salt.
func DeriveWith(password string, saltSize, iterations int) ([]byte, error) {
	if password == "" || saltSize <= 0 || iterations <= 0 {
		return nil, ErrInvalidInput
	}

	salt := make([]byte, saltSize)
	_, err := rand.Read(salt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha512.New)

	hash := make([]byte, 0, KeySize+saltSize)
	hash = append(hash, key...)
	hash = append(hash, salt...)
	return hash, nil
}

// Verify checks password against a blob produced by Derive.
// Malformed blobs fail verification instead of erroring differently.
func Verify(hash []byte, password string) error {
	return VerifyWith(hash, password, DefaultIterations)
}

func VerifyWith(hash []byte, password string, iterations int) error {
	if iterations <= 0 {
		return ErrInvalidInput
	}
	if len(hash) <= KeySize {
		return ErrVerificationFailed
	}

	stored := hash[:KeySize]
	salt := hash[KeySize:]

	key := pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha512.New)
	if subtle.ConstantTimeCompare(stored, key) != 1 {
		return ErrVerificationFailed
	}

	return nil
}
