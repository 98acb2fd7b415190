package handlers

import (
	"net/http"

	"judicial-archive/internal/middleware"
	"judicial-archive/internal/models"
	"judicial-archive/internal/services"

	"github.com/gin-gonic/gin"
)

// PermissionHandler tells the caller what they may do, so clients can hide
// actions they would be refused.
type PermissionHandler struct {
	Base
	EnforceStatusWorkflow bool
}

func (h *PermissionHandler) Register(r *gin.Engine) {
	r.GET("/api/permissions", h.Auth.JWTAuth(), h.Mine)
}

func (h *PermissionHandler) Mine(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	granted := make([]models.Permission, 0, 3)
	for _, p := range []models.Permission{models.PermissionRead, models.PermissionWrite, models.PermissionManage} {
		if user.Role.Can(p) {
			granted = append(granted, p)
		}
	}

	transitions := make(map[models.Status][]models.Status, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		if h.EnforceStatusWorkflow {
			transitions[s] = services.NextStatuses(s)
			continue
		}
		for _, to := range models.AllStatuses {
			if to != s {
				transitions[s] = append(transitions[s], to)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"role":              user.Role,
		"permissions":       granted,
		"statusTransitions": transitions,
	})
}
