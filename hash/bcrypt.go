// Package hash provides the concrete password-hashing adapter the native
// user store depends on through its Hasher interface. The spec fixes the
// algorithm to BCrypt, so unlike the teacher's password package (which
// wraps Argon2), this wraps golang.org/x/crypto/bcrypt — the adapter
// shape (Config, New, Hash, Verify) is otherwise the same.
package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Config controls the BCrypt cost factor.
type Config struct {
	Cost int
}

// DefaultConfig returns a Config using bcrypt's recommended default cost.
func DefaultConfig() Config {
	return Config{Cost: bcrypt.DefaultCost}
}

// BcryptHasher implements nativeusers.Hasher over golang.org/x/crypto/bcrypt.
type BcryptHasher struct {
	cost int
}

// New validates cfg and returns a BcryptHasher.
func New(cfg Config) (*BcryptHasher, error) {
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, errors.New("hash: bcrypt cost out of range")
	}
	return &BcryptHasher{cost: cfg.Cost}, nil
}

// Hash produces a self-describing BCrypt hash of plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. It never returns an
// error: a malformed hash or mismatched password both verify as false,
// matching the source's Hasher.verify contract.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
