package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/pkg/config"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

// TokenVerifier decides whether a presented session token grants access.
type TokenVerifier interface {
	Policy() string
	Verify(ctx context.Context, token string) (*models.Session, error)
}

// SessionStore keeps live sessions so they can be revoked before expiry.
type SessionStore interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func sessionKey(id string) string {
	return "session:" + id
}

// JWTVerifier accepts signed, unexpired tokens whose session is still stored.
type JWTVerifier struct {
	signer *TokenSigner
	store  SessionStore
}

// NewJWTVerifier builds the default verifier.
func NewJWTVerifier(signer *TokenSigner, store SessionStore) *JWTVerifier {
	return &JWTVerifier{signer: signer, store: store}
}

// Policy implements TokenVerifier.
func (v *JWTVerifier) Policy() string { return config.SessionPolicyJWT }

// Verify implements TokenVerifier.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*models.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, appErrors.ErrUnauthorized
	}
	claims, err := v.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}
	var stored models.Session
	found, err := v.store.Get(ctx, sessionKey(claims.ID), &stored)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or signed out")
	}
	return &stored, nil
}

// PresenceVerifier accepts any non-empty token. It performs no
// authentication and exists for deployments that only need a navigation gate.
type PresenceVerifier struct {
	signer *TokenSigner
}

// NewPresenceVerifier builds the presence-only verifier.
func NewPresenceVerifier(signer *TokenSigner) *PresenceVerifier {
	return &PresenceVerifier{signer: signer}
}

// Policy implements TokenVerifier.
func (v *PresenceVerifier) Policy() string { return config.SessionPolicyPresence }

// Verify implements TokenVerifier. Claims are decoded for display when the
// token happens to be one of ours; they are never trusted.
func (v *PresenceVerifier) Verify(_ context.Context, token string) (*models.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if v.signer != nil {
		if claims, err := v.signer.ParseUnverified(token); err == nil {
			session := sessionFromClaims(claims)
			return &session, nil
		}
	}
	return &models.Session{ID: "presence"}, nil
}

// NewTokenVerifier selects the verifier for the configured policy.
func NewTokenVerifier(policy string, signer *TokenSigner, store SessionStore, logger *zap.Logger) (TokenVerifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch policy {
	case "", config.SessionPolicyJWT:
		return NewJWTVerifier(signer, store), nil
	case config.SessionPolicyPresence:
		logger.Warn("session policy 'presence' accepts any non-empty token; this is not authentication")
		return NewPresenceVerifier(signer), nil
	default:
		return nil, fmt.Errorf("unknown session policy %q", policy)
	}
}
