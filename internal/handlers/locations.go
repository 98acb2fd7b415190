package handlers

import (
	"net/http"

	"judicial-archive/internal/middleware"
	"judicial-archive/internal/models"
	"judicial-archive/internal/services"

	"github.com/gin-gonic/gin"
)

// LocationHandler serves the block, row and section hierarchy.
type LocationHandler struct {
	Base
	Archive *services.ArchiveService
}

func (h *LocationHandler) Register(r *gin.Engine) {
	read := r.Group("/api", h.guard(models.PermissionRead)...)
	read.GET("/blocks", h.ListBlocks)
	read.GET("/blocks/:id/rows", h.ListRows)
	read.GET("/rows/:id/sections", h.ListSections)

	manage := r.Group("/api", h.guard(models.PermissionManage)...)
	manage.POST("/blocks", h.CreateBlock)
	manage.POST("/blocks/:id/rows", h.CreateRow)
	manage.POST("/rows/:id/sections", h.CreateSection)
}

func (h *LocationHandler) ListBlocks(c *gin.Context) {
	blocks, err := h.Archive.ListBlocks(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

func (h *LocationHandler) ListRows(c *gin.Context) {
	rows, err := h.Archive.ListRows(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *LocationHandler) ListSections(c *gin.Context) {
	sections, err := h.Archive.ListSections(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

type labelRequest struct {
	Label string `json:"label" binding:"required"`
}

func (h *LocationHandler) CreateBlock(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	block, err := h.Archive.CreateBlock(c.Request.Context(), middleware.Actor(c), req.Label)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (h *LocationHandler) CreateRow(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	row, err := h.Archive.CreateRow(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Label)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *LocationHandler) CreateSection(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	section, err := h.Archive.CreateSection(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Label)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}
