package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds operator credentials.
type LoginRequest struct {
	Email      string `json:"email" form:"email" validate:"required,email"`
	Password   string `json:"password" form:"password" validate:"required"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

// LoginResponse returns the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
	Session   Session   `json:"session"`
}

// Session is a verified operator session.
type Session struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name,omitempty"`
	RememberMe bool      `json:"remember_me"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// TTL is the remaining lifetime at now.
func (s Session) TTL(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// SessionClaims is the JWT payload of a session token. The session id travels
// as the registered "jti" claim.
type SessionClaims struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name,omitempty"`
	RememberMe bool   `json:"remember_me"`
	jwt.RegisteredClaims
}
