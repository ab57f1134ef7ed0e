// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-coins/backend/internal/application/adapter"
)

// DefaultBcryptCost is the cost factor used when none is configured.
const DefaultBcryptCost = 12

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password must not be empty")

// passwordService implements the adapter.PasswordService interface.
type passwordService struct {
	cost int
}

// NewPasswordService creates a password service hashing with the given bcrypt cost.
// Costs outside bcrypt's range fall back to DefaultBcryptCost.
func NewPasswordService(cost int) adapter.PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &passwordService{cost: cost}
}

// HashPassword hashes a plain text password using bcrypt with a random salt.
func (s *passwordService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hashedBytes, err := bcrypt.GenerateFromPassword(prehash(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword compares a plain text password with a hashed password.
func (s *passwordService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), prehash(password))
}

// prehash digests the password so inputs of any length fit bcrypt's 72-byte limit
// without truncation. The base64 form keeps NUL bytes out of bcrypt's input.
func prehash(password string) []byte {
	sum := blake2b.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// Matches reports whether password hashes to hashedPassword.
func Matches(s adapter.PasswordService, hashedPassword, password string) bool {
	return s.VerifyPassword(hashedPassword, password) == nil
}
