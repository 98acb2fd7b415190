package services

import (
	"context"
	"fmt"
	"strings"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
)

type NewPaper struct {
	DocumentID    string
	Title         string
	Content       *string
	AttachmentURL *string
	FileType      *string
	FileSize      *int64
}

type PaperUpdate struct {
	Title         *string
	Content       *string
	AttachmentURL *string
	FileType      *string
	FileSize      *int64
}

func (s *ArchiveService) ListPapers(ctx context.Context, documentID string) ([]models.Paper, error) {
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.store.ListPapers(ctx, documentID)
}

func (s *ArchiveService) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	return s.store.GetPaper(ctx, id)
}

func (s *ArchiveService) CreatePaper(ctx context.Context, actor repositories.Actor, in NewPaper) (*models.Paper, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if in.FileSize != nil && *in.FileSize < 0 {
		return nil, invalid("fileSize must not be negative")
	}
	if reservedAttachment(in.AttachmentURL) {
		return nil, invalid("attachmentUrl: stored files are attached by upload only")
	}
	if _, err := s.store.GetDocument(ctx, in.DocumentID); err != nil {
		return nil, fmt.Errorf("document %s: %w", in.DocumentID, err)
	}

	paper := &models.Paper{
		DocumentID:    in.DocumentID,
		Title:         title,
		Content:       in.Content,
		AttachmentURL: in.AttachmentURL,
		FileType:      in.FileType,
		FileSize:      in.FileSize,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreatePaper(ctx, paper); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "paper_created", "paper", paper.ID, map[string]any{"document_id": paper.DocumentID})
	return paper, nil
}

// UpdatePaper applies a client edit. Stored-file URLs are refused here; only
// the attachment service points a paper at one.
func (s *ArchiveService) UpdatePaper(ctx context.Context, actor repositories.Actor, id string, in PaperUpdate) (*models.Paper, error) {
	if reservedAttachment(in.AttachmentURL) {
		return nil, invalid("attachmentUrl: stored files are attached by upload only")
	}
	return s.patchPaper(ctx, actor, id, in)
}

func (s *ArchiveService) patchPaper(ctx context.Context, actor repositories.Actor, id string, in PaperUpdate) (*models.Paper, error) {
	patch := models.PaperPatch{
		Content:       in.Content,
		AttachmentURL: in.AttachmentURL,
		FileType:      in.FileType,
		FileSize:      in.FileSize,
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalid("title must not be empty")
		}
		patch.Title = &title
	}
	if in.FileSize != nil && *in.FileSize < 0 {
		return nil, invalid("fileSize must not be negative")
	}

	paper, err := s.store.UpdatePaper(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, "paper_updated", "paper", id, nil)
	return paper, nil
}

func (s *ArchiveService) DeletePaper(ctx context.Context, actor repositories.Actor, id string) error {
	if err := s.store.DeletePaper(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "paper_deleted", "paper", id, nil)
	return nil
}

func reservedAttachment(url *string) bool {
	if url == nil {
		return false
	}
	return managedScheme(strings.ToLower(strings.TrimSpace(*url)))
}
