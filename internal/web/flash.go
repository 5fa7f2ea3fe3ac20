package web

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-admin/internal/middleware"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// AddFlash queues a notification for the next page view.
func AddFlash(c *gin.Context, kind, message string) {
	sessions.Default(c).AddFlash(message, kind)
	_ = middleware.SaveSession(c)
}

// Flashes drains queued notifications, errors first.
func Flashes(c *gin.Context) []Flash {
	s := sessions.Default(c)
	var out []Flash
	for _, kind := range []string{FlashError, FlashSuccess} {
		for _, v := range s.Flashes(kind) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Kind: kind, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		_ = middleware.SaveSession(c)
	}
	return out
}
