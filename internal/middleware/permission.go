package middleware

import (
	"net/http"
	"strings"

	"judicial-archive/internal/i18n"
	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"

	"github.com/gin-gonic/gin"
)

// RequirePermission checks the caller's role against the permission table.
// It must run after JWTAuth.
func RequirePermission(tr *i18n.Translator, p models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ContextRole)
		if !exists {
			tr.Abort(c, http.StatusUnauthorized, i18n.MsgUnauthorized, "", nil)
			return
		}
		role, _ := v.(models.Role)
		if !role.Can(p) {
			tr.Abort(c, http.StatusForbidden, i18n.MsgForbidden, "", nil)
			return
		}
		c.Next()
	}
}

// Actor describes the caller for the audit log.
func Actor(c *gin.Context) repositories.Actor {
	return repositories.Actor{
		UserID:    c.GetString(ContextUserID),
		IP:        ExtractIPFromRequest(c),
		UserAgent: c.Request.UserAgent(),
	}
}

// ExtractIPFromRequest extracts client IP from request
func ExtractIPFromRequest(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}

	return c.ClientIP()
}
