package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/teacher-admin/internal/models"
)

// TokenSigner issues and parses HS256 session tokens.
type TokenSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenSigner builds a signer for the given secret and issuer.
func NewTokenSigner(secret, issuer string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Sign encodes the session as a JWT whose jti is the session id.
func (s *TokenSigner) Sign(session models.Session) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("session signing secret missing")
	}
	claims := &models.SessionClaims{
		Email:      session.Email,
		FullName:   session.FullName,
		RememberMe: session.RememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    s.issuer,
			Subject:   session.Email,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			NotBefore: jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies signature, issuer and expiry.
func (s *TokenSigner) Parse(token string) (*models.SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &models.SessionClaims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, fmt.Errorf("invalid session claims")
	}
	return claims, nil
}

// ParseUnverified decodes claims without checking the signature.
func (s *TokenSigner) ParseUnverified(token string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func sessionFromClaims(c *models.SessionClaims) models.Session {
	session := models.Session{
		ID:         c.ID,
		Email:      c.Email,
		FullName:   c.FullName,
		RememberMe: c.RememberMe,
	}
	if c.IssuedAt != nil {
		session.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		session.ExpiresAt = c.ExpiresAt.Time
	}
	return session
}
