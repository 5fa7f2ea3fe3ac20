package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-admin/internal/middleware"
	"github.com/noah-isme/teacher-admin/internal/models"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
	"github.com/noah-isme/teacher-admin/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Verify(ctx context.Context, token string) (*models.Session, error)
	Logout(ctx context.Context, session *models.Session) error
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service      authService
	secureCookie bool
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: svc, secureCookie: secureCookie}
}

// Login godoc
// @Summary Sign in
// @Description Authenticate an operator by email and password. The token is returned and also set as the session cookie.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := middleware.SaveToken(c, res.Token, cookieMaxAge(res), h.secureCookie); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Sign out
// @Description Revoke the current session and clear the session cookie
// @Tags Authentication
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), sessionFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	_ = middleware.ClearToken(c)
	response.NoContent(c)
}

// Session godoc
// @Summary Current session
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// cookieMaxAge keeps remember-me sessions across browser restarts; others
// end with the browser session.
func cookieMaxAge(res *models.LoginResponse) int {
	if !res.Session.RememberMe {
		return 0
	}
	return int(res.ExpiresIn)
}
