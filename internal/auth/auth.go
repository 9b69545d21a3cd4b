// Package auth verifies the administrator password.
package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("incorrect password")
	ErrLoginDisabled   = errors.New("admin login is not configured")
)

// Authenticator checks a submitted admin password.
type Authenticator interface {
	Authenticate(password string) error
}

// PasswordAuthenticator compares against a bcrypt hash of the configured password.
type PasswordAuthenticator struct {
	hash []byte
}

// NewPasswordAuthenticator hashes secret. A value that already looks like a
// bcrypt hash is used as is. An empty secret disables login.
func NewPasswordAuthenticator(secret string) (*PasswordAuthenticator, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &PasswordAuthenticator{}, nil
	}
	if _, err := bcrypt.Cost([]byte(secret)); err == nil {
		return &PasswordAuthenticator{hash: []byte(secret)}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &PasswordAuthenticator{hash: hash}, nil
}

// Authenticate returns nil when password matches.
func (a *PasswordAuthenticator) Authenticate(password string) error {
	if len(a.hash) == 0 {
		return ErrLoginDisabled
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
