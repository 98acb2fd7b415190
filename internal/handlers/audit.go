package handlers

import (
	"net/http"
	"strconv"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
	"judicial-archive/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	Base
	Audit *repositories.AuditRepository
}

func (h *AuditHandler) Register(r *gin.Engine) {
	protected := r.Group("/api/audit", h.guard(models.PermissionManage)...)

	protected.GET("/logs", h.ListLogs)
	protected.GET("/resource/:resourceId", h.GetResourceAuditLogs)
	protected.GET("/user/:userId", h.GetUserAuditLogs)
}

func (h *AuditHandler) ListLogs(c *gin.Context) {
	h.list(c, repositories.AuditFilter{
		UserID:       c.Query("userId"),
		Action:       c.Query("action"),
		ResourceType: c.Query("resourceType"),
		ResourceID:   c.Query("resourceId"),
	})
}

func (h *AuditHandler) GetResourceAuditLogs(c *gin.Context) {
	h.list(c, repositories.AuditFilter{
		ResourceType: c.Query("resourceType"),
		ResourceID:   c.Param("resourceId"),
	})
}

func (h *AuditHandler) GetUserAuditLogs(c *gin.Context) {
	h.list(c, repositories.AuditFilter{UserID: c.Param("userId")})
}

func (h *AuditHandler) list(c *gin.Context, filter repositories.AuditFilter) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultPageLimit)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, offset = utils.ValidatePaginationParams(limit, offset)

	logs, total, err := h.Audit.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total, "limit": limit, "offset": offset})
}
