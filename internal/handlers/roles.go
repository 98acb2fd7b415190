package handlers

import (
	"net/http"

	"judicial-archive/internal/models"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	Base
}

func (h *RoleHandler) Register(r *gin.Engine) {
	r.GET("/api/roles", append(h.guard(models.PermissionRead), h.ListRoles)...)
}

type roleView struct {
	Role        models.Role         `json:"role"`
	Permissions []models.Permission `json:"permissions"`
}

func (h *RoleHandler) ListRoles(c *gin.Context) {
	out := make([]roleView, 0, len(models.AllRoles))
	for _, role := range models.AllRoles {
		out = append(out, roleView{Role: role, Permissions: models.RolePermissions[role]})
	}
	c.JSON(http.StatusOK, out)
}
