package handler

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-admin/internal/middleware"
	"github.com/noah-isme/teacher-admin/internal/models"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

func authRouter(auth *fakeAuth) *gin.Engine {
	h := NewAuthHandler(auth, false)
	r := gin.New()
	store := cookie.NewStore([]byte("cookie-secret"))
	store.Options(middleware.CookieOptions(0, false))
	r.Use(sessions.Sessions("teacher_admin_session", store))
	r.POST("/auth/login", h.Login)
	secured := r.Group("", middleware.RequireSession(auth))
	secured.POST("/auth/logout", h.Logout)
	secured.GET("/auth/session", h.Session)
	return r
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "teacher_admin_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Run("browser session cookie", func(t *testing.T) {
		auth := &fakeAuth{}
		r := authRouter(auth)
		req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@school.test","password":"s3cret!"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(r, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"token":"valid-token"`)

		c := sessionCookie(t, resp.Result())
		assert.Equal(t, 0, c.MaxAge)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "admin@school.test", auth.lastLogin.Email)
	})

	t.Run("remember me persists cookie", func(t *testing.T) {
		r := authRouter(&fakeAuth{})
		req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@school.test","password":"s3cret!","remember_me":true}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(r, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, 3600, sessionCookie(t, resp.Result()).MaxAge)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		r := authRouter(&fakeAuth{loginErr: appErrors.ErrInvalidCredentials})
		req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@school.test","password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(r, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Empty(t, resp.Result().Cookies())
	})

	t.Run("malformed payload", func(t *testing.T) {
		r := authRouter(&fakeAuth{})
		req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`not json`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(r, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestAuthHandlerSessionAndLogout(t *testing.T) {
	auth := &fakeAuth{}
	r := authRouter(auth)

	req, _ := http.NewRequest(http.MethodGet, "/auth/session", nil)
	resp := performRequest(r, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	req, _ = http.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	resp = performRequest(r, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), testSession.Email)

	req, _ = http.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	resp = performRequest(r, req)
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.NotNil(t, auth.loggedOut)
	assert.Equal(t, testSession.ID, auth.loggedOut.ID)
}

func TestCookieMaxAge(t *testing.T) {
	assert.Equal(t, 0, cookieMaxAge(&models.LoginResponse{ExpiresIn: 600}))
	assert.Equal(t, 600, cookieMaxAge(&models.LoginResponse{ExpiresIn: 600, Session: models.Session{RememberMe: true}}))
}
