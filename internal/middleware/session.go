package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-admin/internal/models"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
	"github.com/noah-isme/teacher-admin/pkg/response"
)

// ContextSessionKey is the gin context key storing the *SessionContext.
const ContextSessionKey = "sessionContext"

const (
	cookieTokenKey  = "token"
	cookieMaxAgeKey = "max_age"
	cookieSecureKey = "secure"
)

// SessionContext is the verified session attached to a request.
type SessionContext struct {
	Session *models.Session
	Token   string
}

type sessionVerifier interface {
	Verify(ctx context.Context, token string) (*models.Session, error)
}

// SessionFromContext returns the session set by the guard, if any.
func SessionFromContext(c *gin.Context) (*SessionContext, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	sc, ok := value.(*SessionContext)
	return sc, ok && sc != nil
}

// RequireSession guards JSON routes, answering 401 without a valid session.
func RequireSession(auth sessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		session, err := auth.Verify(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, &SessionContext{Session: session, Token: token})
		c.Next()
	}
}

// RequireSessionPage guards HTML routes, redirecting to loginPath.
func RequireSessionPage(auth sessionVerifier, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token != "" {
			if session, err := auth.Verify(c.Request.Context(), token); err == nil {
				c.Set(ContextSessionKey, &SessionContext{Session: session, Token: token})
				c.Next()
				return
			}
		}
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
	}
}

// OptionalSession attaches a valid session when present but never blocks.
func OptionalSession(auth sessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := TokenFromRequest(c); token != "" {
			if session, err := auth.Verify(c.Request.Context(), token); err == nil {
				c.Set(ContextSessionKey, &SessionContext{Session: session, Token: token})
			}
		}
		c.Next()
	}
}

// TokenFromRequest reads a bearer header first and falls back to the session
// cookie.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	if token, ok := sessions.Default(c).Get(cookieTokenKey).(string); ok {
		return token
	}
	return ""
}

// CookieOptions builds the session cookie options. A positive maxAge makes
// the cookie persistent; zero keeps it for the browser session only.
func CookieOptions(maxAge int, secure bool) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SaveToken stores token in the session cookie with the given lifetime.
func SaveToken(c *gin.Context, token string, maxAge int, secure bool) error {
	s := sessions.Default(c)
	s.Set(cookieTokenKey, token)
	s.Set(cookieMaxAgeKey, maxAge)
	s.Set(cookieSecureKey, secure)
	s.Options(CookieOptions(maxAge, secure))
	return s.Save()
}

// SaveSession writes pending session changes, such as flashes, keeping the
// lifetime chosen at sign-in.
func SaveSession(c *gin.Context) error {
	s := sessions.Default(c)
	maxAge, _ := s.Get(cookieMaxAgeKey).(int)
	secure, _ := s.Get(cookieSecureKey).(bool)
	s.Options(CookieOptions(maxAge, secure))
	return s.Save()
}

// ClearToken drops the token and expires the cookie.
func ClearToken(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}
