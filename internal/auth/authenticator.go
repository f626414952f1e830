package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredential is returned when an admin password does not match
var ErrInvalidCredential = errors.New("invalid credential")

// Authenticator verifies the shared admin credential
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) error
}

// PasswordAuthenticator checks passwords against a bcrypt hash
type PasswordAuthenticator struct {
	hash []byte
}

// NewPasswordAuthenticator accepts a bcrypt hash, or a plain password that is
// hashed once at startup when no hash is configured.
func NewPasswordAuthenticator(passwordHash, password string) (*PasswordAuthenticator, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
		return &PasswordAuthenticator{hash: []byte(passwordHash)}, nil
	}
	if password == "" {
		return nil, fmt.Errorf("admin password is required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &PasswordAuthenticator{hash: []byte(hash)}, nil
}

func (a *PasswordAuthenticator) Authenticate(ctx context.Context, credential string) error {
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredential
		}
		return fmt.Errorf("failed to verify admin password: %w", err)
	}
	return nil
}

// HashPassword returns the bcrypt hash to configure as ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
