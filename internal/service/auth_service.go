package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/teacher-admin/internal/models"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

// AdminRepository looks up operator accounts.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

// AuthConfig defines session lifetimes.
type AuthConfig struct {
	SessionTTL  time.Duration
	RememberTTL time.Duration
}

// AuthService signs operators in and out and guards every protected request.
type AuthService struct {
	repo      AdminRepository
	signer    *TokenSigner
	store     SessionStore
	verifier  TokenVerifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo AdminRepository, signer *TokenSigner, store SessionStore, verifier TokenVerifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		signer:    signer,
		store:     store,
		verifier:  verifier,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
	}
}

// Policy names the active verification policy.
func (s *AuthService) Policy() string {
	return s.verifier.Policy()
}

// Login checks credentials and opens a session. Remember-me sessions live for
// RememberTTL, others for SessionTTL.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordLogin(false)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please enter email and password")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		s.metrics.RecordLogin(false)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
	}

	if !user.Active {
		s.metrics.RecordLogin(false)
		return nil, appErrors.ErrInactiveAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(false)
		return nil, appErrors.ErrInvalidCredentials
	}

	ttl := s.config.SessionTTL
	if req.RememberMe {
		ttl = s.config.RememberTTL
	}
	issuedAt := s.now().UTC().Truncate(time.Second)
	session := models.Session{
		ID:         uuid.NewString(),
		Email:      user.Email,
		FullName:   user.FullName,
		RememberMe: req.RememberMe,
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt.Add(ttl),
	}

	token, err := s.signer.Sign(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}
	if err := s.store.Set(ctx, sessionKey(session.ID), session, ttl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	s.metrics.RecordLogin(true)
	s.logger.Info("operator signed in", zap.String("email", user.Email), zap.Bool("remember_me", req.RememberMe))

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
		ExpiresAt: session.ExpiresAt,
		Session:   session,
	}, nil
}

// Verify runs the configured policy over a presented token.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.Session, error) {
	session, err := s.verifier.Verify(ctx, token)
	s.metrics.RecordSessionCheck(s.verifier.Policy(), err == nil)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Logout revokes the session so its token stops verifying.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	if session == nil || session.ID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionKey(session.ID)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke session")
	}
	s.logger.Info("operator signed out", zap.String("email", session.Email))
	return nil
}
