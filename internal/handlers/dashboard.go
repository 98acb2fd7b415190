package handlers

import (
	"net/http"
	"strconv"

	"judicial-archive/internal/models"
	"judicial-archive/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	Base
	Archive *services.ArchiveService
}

func (h *DashboardHandler) Register(r *gin.Engine) {
	g := r.Group("/api", h.guard(models.PermissionRead)...)
	g.GET("/dashboard/stats", h.Stats)
	g.GET("/dashboard/recent-documents", h.RecentDocuments)
	g.GET("/dashboard/user-progress", h.UserProgress)
	g.GET("/profile", h.Profile)
	g.GET("/profile/activity", h.ActivityCalendar)
}

// Stats counts every document unless userId narrows it to one creator.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.Archive.Stats(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) RecentDocuments(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.badRequest(c, err)
			return
		}
		limit = n
	}

	docs, err := h.Archive.RecentDocuments(c.Request.Context(), limit, c.Query("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DashboardHandler) UserProgress(c *gin.Context) {
	userID, ok := h.targetUser(c)
	if !ok {
		return
	}
	progress, err := h.Archive.UserProgress(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, zap.String("user_id", userID))
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *DashboardHandler) Profile(c *gin.Context) {
	userID, ok := h.targetUser(c)
	if !ok {
		return
	}
	profile, err := h.Archive.Profile(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, zap.String("user_id", userID))
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *DashboardHandler) ActivityCalendar(c *gin.Context) {
	userID, ok := h.targetUser(c)
	if !ok {
		return
	}
	calendar, err := h.Archive.ActivityCalendar(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, zap.String("user_id", userID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": services.ActivityCalendarDays, "activity": calendar})
}
