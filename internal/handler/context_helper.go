package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-admin/internal/middleware"
	"github.com/noah-isme/teacher-admin/internal/models"
)

func sessionFromContext(c *gin.Context) *models.Session {
	sc, ok := middleware.SessionFromContext(c)
	if !ok {
		return nil
	}
	return sc.Session
}
