package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/repository"
	"github.com/noah-isme/teacher-admin/pkg/config"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

type fakeAdminRepo struct {
	users     map[string]*models.AdminUser
	lastLogin map[string]time.Time
}

func newFakeAdminRepo(t *testing.T) *fakeAdminRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	return &fakeAdminRepo{
		users: map[string]*models.AdminUser{
			"admin@example.com":  {ID: "u-1", Email: "admin@example.com", FullName: "Site Admin", PasswordHash: string(hash), Active: true},
			"former@example.com": {ID: "u-2", Email: "former@example.com", PasswordHash: string(hash), Active: false},
		},
		lastLogin: map[string]time.Time{},
	}
}

func (f *fakeAdminRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if u, ok := f.users[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAdminRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	f.lastLogin[id] = ts
	return nil
}

type authFixture struct {
	svc    *AuthService
	repo   *fakeAdminRepo
	signer *TokenSigner
	store  *CacheService
}

func newAuthFixture(t *testing.T, policy string) authFixture {
	t.Helper()
	repo := newFakeAdminRepo(t)
	signer := NewTokenSigner("test-secret", "teacher-admin")
	store := NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Hour, nil)
	verifier, err := NewTokenVerifier(policy, signer, store, nil)
	require.NoError(t, err)
	svc := NewAuthService(repo, signer, store, verifier, NewMetricsService(), nil, nil, AuthConfig{SessionTTL: 12 * time.Hour, RememberTTL: 720 * time.Hour})
	return authFixture{svc: svc, repo: repo, signer: signer, store: store}
}

func TestAuthLoginIssuesVerifiableSession(t *testing.T) {
	f := newAuthFixture(t, config.SessionPolicyJWT)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, models.LoginRequest{Email: " admin@example.com ", Password: "s3cret!"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64((12 * time.Hour).Seconds()), resp.ExpiresIn)
	assert.False(t, resp.Session.RememberMe)
	assert.Contains(t, f.repo.lastLogin, "u-1")

	session, err := f.svc.Verify(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", session.Email)
	assert.Equal(t, "Site Admin", session.FullName)
	assert.Equal(t, resp.Session.ID, session.ID)
}

func TestAuthLoginRememberMeUsesLongTTL(t *testing.T) {
	f := newAuthFixture(t, config.SessionPolicyJWT)
	resp, err := f.svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "s3cret!", RememberMe: true})
	require.NoError(t, err)
	assert.Equal(t, int64((720 * time.Hour).Seconds()), resp.ExpiresIn)
	assert.True(t, resp.Session.RememberMe)
}

func TestAuthLoginFailures(t *testing.T) {
	f := newAuthFixture(t, config.SessionPolicyJWT)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, models.LoginRequest{Email: "admin@example.com"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "s3cret!"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "former@example.com", Password: "s3cret!"})
	assert.True(t, errors.Is(err, appErrors.ErrInactiveAccount))
}

func TestAuthLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t, config.SessionPolicyJWT)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, models.LoginRequest{Email: "admin@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, &resp.Session))

	_, err = f.svc.Verify(ctx, resp.Token)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, appErrors.FromError(err).Status)
}

func TestJWTVerifierRejectsForgedToken(t *testing.T) {
	f := newAuthFixture(t, config.SessionPolicyJWT)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, models.LoginRequest{Email: "admin@example.com", Password: "s3cret!"})
	require.NoError(t, err)

	forger := NewTokenSigner("other-secret", "teacher-admin")
	forged, err := forger.Sign(resp.Session)
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, forged)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	_, err = f.svc.Verify(ctx, "")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	_, err = f.svc.Verify(ctx, "not-a-jwt")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestJWTVerifierRejectsExpiredToken(t *testing.T) {
	f := newAuthFixture(t, config.SessionPolicyJWT)
	issued := time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second)
	session := models.Session{ID: "s-old", Email: "admin@example.com", IssuedAt: issued, ExpiresAt: issued.Add(time.Hour)}
	token, err := f.signer.Sign(session)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(context.Background(), sessionKey(session.ID), session, time.Hour))

	_, err = f.svc.Verify(context.Background(), token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestPresenceVerifierAcceptsAnyToken(t *testing.T) {
	f := newAuthFixture(t, config.SessionPolicyPresence)
	ctx := context.Background()
	assert.Equal(t, config.SessionPolicyPresence, f.svc.Policy())

	session, err := f.svc.Verify(ctx, "anything-at-all")
	require.NoError(t, err)
	assert.Equal(t, "presence", session.ID)

	forger := NewTokenSigner("other-secret", "")
	forged, err := forger.Sign(models.Session{ID: "x", Email: "someone@example.com", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	session, err = f.svc.Verify(ctx, forged)
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", session.Email)

	_, err = f.svc.Verify(ctx, "  ")
	assert.Error(t, err)
}

func TestNewTokenVerifierUnknownPolicy(t *testing.T) {
	_, err := NewTokenVerifier("oauth", nil, nil, nil)
	assert.Error(t, err)
}
