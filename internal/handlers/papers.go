package handlers

import (
	"mime"
	"net/http"

	"judicial-archive/internal/middleware"
	"judicial-archive/internal/models"
	"judicial-archive/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaperHandler serves papers and their attachments.
type PaperHandler struct {
	Base
	Archive     *services.ArchiveService
	Attachments *services.AttachmentService
}

func (h *PaperHandler) Register(r *gin.Engine) {
	read := r.Group("/api/papers", h.guard(models.PermissionRead)...)
	read.GET("/:id", h.GetPaper)
	read.GET("/:id/attachment", h.DownloadAttachment)

	write := r.Group("/api/papers", h.guard(models.PermissionWrite)...)
	write.POST("", h.CreatePaper)
	write.PUT("/:id", h.UpdatePaper)
	write.PATCH("/:id", h.UpdatePaper)
	write.DELETE("/:id", h.DeletePaper)
	write.POST("/:id/attachment", h.UploadAttachment)
	write.POST("/:id/attachment-url", h.PresignAttachment)
}

func (h *PaperHandler) GetPaper(c *gin.Context) {
	paper, err := h.Archive.GetPaper(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, paper)
}

type createPaperRequest struct {
	DocumentID    string  `json:"documentId" binding:"required"`
	Title         string  `json:"title" binding:"required"`
	Content       *string `json:"content"`
	AttachmentURL *string `json:"attachmentUrl"`
	FileType      *string `json:"fileType"`
	FileSize      *int64  `json:"fileSize"`
}

func (h *PaperHandler) CreatePaper(c *gin.Context) {
	var req createPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	paper, err := h.Archive.CreatePaper(c.Request.Context(), middleware.Actor(c), services.NewPaper{
		DocumentID:    req.DocumentID,
		Title:         req.Title,
		Content:       req.Content,
		AttachmentURL: req.AttachmentURL,
		FileType:      req.FileType,
		FileSize:      req.FileSize,
	})
	if err != nil {
		h.fail(c, err, zap.String("document_id", req.DocumentID))
		return
	}
	c.JSON(http.StatusCreated, paper)
}

type updatePaperRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	AttachmentURL *string `json:"attachmentUrl"`
	FileType      *string `json:"fileType"`
	FileSize      *int64  `json:"fileSize"`
}

func (h *PaperHandler) UpdatePaper(c *gin.Context) {
	var req updatePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	id := c.Param("id")
	paper, err := h.Archive.UpdatePaper(c.Request.Context(), middleware.Actor(c), id, services.PaperUpdate{
		Title:         req.Title,
		Content:       req.Content,
		AttachmentURL: req.AttachmentURL,
		FileType:      req.FileType,
		FileSize:      req.FileSize,
	})
	if err != nil {
		h.fail(c, err, zap.String("paper_id", id))
		return
	}
	c.JSON(http.StatusOK, paper)
}

func (h *PaperHandler) DeletePaper(c *gin.Context) {
	id := c.Param("id")
	if err := h.Attachments.DeletePaper(c.Request.Context(), middleware.Actor(c), id); err != nil {
		h.fail(c, err, zap.String("paper_id", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UploadAttachment takes a multipart "file" field and stores it locally.
func (h *PaperHandler) UploadAttachment(c *gin.Context) {
	id := c.Param("id")
	if limit := h.Attachments.MaxBytes(); limit > 0 {
		// room for the multipart envelope
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.badRequest(c, err)
		return
	}
	defer f.Close()

	paper, err := h.Attachments.Upload(c.Request.Context(), middleware.Actor(c), id, fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		h.fail(c, err, zap.String("paper_id", id))
		return
	}
	c.JSON(http.StatusOK, paper)
}

type presignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// PresignAttachment returns a URL the client uploads the file to directly.
func (h *PaperHandler) PresignAttachment(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	id := c.Param("id")
	presigned, paper, err := h.Attachments.PresignUpload(c.Request.Context(), middleware.Actor(c), id, req.Filename, req.ContentType, req.Size)
	if err != nil {
		h.fail(c, err, zap.String("paper_id", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload": presigned, "paper": paper})
}

func (h *PaperHandler) DownloadAttachment(c *gin.Context) {
	id := c.Param("id")
	att, err := h.Attachments.Open(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, zap.String("paper_id", id))
		return
	}
	if att.File == nil {
		c.Redirect(http.StatusFound, att.RedirectURL)
		return
	}
	defer att.File.Close()

	info, err := att.File.Stat()
	if err != nil {
		h.fail(c, err, zap.String("paper_id", id))
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.Name}))
	c.DataFromReader(http.StatusOK, info.Size(), att.ContentType, att.File, nil)
}
