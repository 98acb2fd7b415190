package handlers

import (
	"net/http"

	"judicial-archive/internal/middleware"
	"judicial-archive/internal/models"
	"judicial-archive/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	Base
	Archive     *services.ArchiveService
	Attachments *services.AttachmentService
}

func (h *DocumentHandler) Register(r *gin.Engine) {
	read := r.Group("/api/documents", h.guard(models.PermissionRead)...)
	read.GET("", h.ListDocuments)
	read.GET("/:id", h.GetDocument)
	read.GET("/:id/papers", h.ListPapers)

	write := r.Group("/api/documents", h.guard(models.PermissionWrite)...)
	write.POST("", h.CreateDocument)
	write.PUT("/:id", h.UpdateDocument)
	write.PATCH("/:id", h.UpdateDocument)
	write.DELETE("/:id", h.DeleteDocument)
}

// ListDocuments accepts search, blockId, rowId, sectionId, category, status
// and createdBy; all given criteria must match.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	q := services.DocumentQuery{
		Search: c.Query("search"),
		Location: services.LocationFilter{
			BlockID:   c.Query("blockId"),
			RowID:     c.Query("rowId"),
			SectionID: c.Query("sectionId"),
		},
		Category:  models.Category(c.Query("category")),
		Status:    models.Status(c.Query("status")),
		CreatedBy: c.Query("createdBy"),
	}
	docs, err := h.Archive.ListDocuments(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.Archive.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, zap.String("document_id", id))
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) ListPapers(c *gin.Context) {
	id := c.Param("id")
	papers, err := h.Archive.ListPapers(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, zap.String("document_id", id))
		return
	}
	c.JSON(http.StatusOK, papers)
}

type createDocumentRequest struct {
	SectionID string         `json:"sectionId" binding:"required"`
	Title     string         `json:"title" binding:"required"`
	Category  string         `json:"category" binding:"required"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata"`
}

func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	doc, err := h.Archive.CreateDocument(ctx, middleware.Actor(c), services.NewDocument{
		SectionID: req.SectionID,
		Title:     req.Title,
		Category:  req.Category,
		Status:    req.Status,
		Metadata:  req.Metadata,
	})
	if err != nil {
		h.fail(c, err, zap.String("section_id", req.SectionID))
		return
	}

	details, err := h.Archive.Details(ctx, doc)
	if err != nil {
		h.fail(c, err, zap.String("document_id", doc.ID))
		return
	}
	c.JSON(http.StatusCreated, details)
}

type updateDocumentRequest struct {
	Title    *string        `json:"title"`
	Category *string        `json:"category"`
	Status   *string        `json:"status"`
	Metadata map[string]any `json:"metadata"`
}

func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	doc, err := h.Archive.UpdateDocument(ctx, middleware.Actor(c), id, services.DocumentUpdate{
		Title:    req.Title,
		Category: req.Category,
		Status:   req.Status,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.fail(c, err, zap.String("document_id", id))
		return
	}

	details, err := h.Archive.Details(ctx, doc)
	if err != nil {
		h.fail(c, err, zap.String("document_id", id))
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if err := h.Attachments.DeleteDocument(c.Request.Context(), middleware.Actor(c), id); err != nil {
		h.fail(c, err, zap.String("document_id", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
