// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

// PasswordService defines the interface for password hashing and verification.
type PasswordService interface {
	// HashPassword hashes a plain text password. Two calls with the same input yield different hashes.
	HashPassword(password string) (string, error)

	// VerifyPassword compares a plain text password with a hashed password.
	// A malformed hash is reported as an error, never a panic.
	VerifyPassword(hashedPassword, password string) error
}
