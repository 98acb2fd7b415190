package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"

	"go.uber.org/zap"
)

const maxReferenceAttempts = 3

type NewDocument struct {
	SectionID string
	Title     string
	Category  string
	// Status defaults to active.
	Status   string
	Metadata map[string]any
}

// DocumentUpdate is a partial update. SectionID is not updatable: a
// document's reference is fixed at creation.
type DocumentUpdate struct {
	Title    *string
	Category *string
	Status   *string
	Metadata map[string]any
}

func (s *ArchiveService) CreateDocument(ctx context.Context, actor repositories.Actor, in NewDocument) (*models.Document, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	category, err := models.ParseCategory(in.Category)
	if err != nil {
		return nil, invalid("%v", err)
	}
	status := models.StatusActive
	if strings.TrimSpace(in.Status) != "" {
		if status, err = models.ParseStatus(in.Status); err != nil {
			return nil, invalid("%v", err)
		}
	}
	if strings.TrimSpace(in.SectionID) == "" {
		return nil, invalid("sectionId is required")
	}
	if _, err := s.store.GetUser(ctx, actor.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid("unknown creator %q", actor.UserID)
		}
		return nil, err
	}

	doc := &models.Document{
		SectionID: in.SectionID,
		Title:     title,
		Category:  category,
		Status:    status,
		Metadata:  in.Metadata,
		CreatedBy: actor.UserID,
	}

	// A collision means the reference was taken outside the allocator
	// (imported data); the counter has moved past it, so try again.
	for attempt := 1; ; attempt++ {
		ref, err := s.AllocateReference(ctx, in.SectionID)
		if err != nil {
			return nil, err
		}
		doc.ID = ""
		doc.Reference = ref
		doc.CreatedAt = s.now()
		doc.UpdatedAt = doc.CreatedAt
		err = s.store.CreateDocument(ctx, doc)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrDuplicate) || attempt == maxReferenceAttempts {
			return nil, fmt.Errorf("create document %s: %w", ref, err)
		}
		s.log.Warn("reference already taken, reallocating", zap.String("reference", ref))
	}

	s.observer.DocumentChanged("created", doc.Category)
	s.record(ctx, actor, "document_created", "document", doc.ID, map[string]any{
		"reference": doc.Reference,
		"category":  string(doc.Category),
	})
	return doc, nil
}

func (s *ArchiveService) UpdateDocument(ctx context.Context, actor repositories.Actor, id string, in DocumentUpdate) (*models.Document, error) {
	current, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	var patch models.DocumentPatch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalid("title must not be empty")
		}
		patch.Title = &title
	}
	if in.Category != nil {
		c, err := models.ParseCategory(*in.Category)
		if err != nil {
			return nil, invalid("%v", err)
		}
		patch.Category = &c
	}
	if in.Status != nil {
		st, err := models.ParseStatus(*in.Status)
		if err != nil {
			return nil, invalid("%v", err)
		}
		if s.enforce && !CanTransition(current.Status, st) {
			return nil, &TransitionError{From: current.Status, To: st}
		}
		patch.Status = &st
	}
	if in.Metadata != nil {
		patch.Metadata = in.Metadata
	}
	patch.UpdatedAt = s.now()

	updated, err := s.store.UpdateDocument(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.observer.DocumentChanged("updated", updated.Category)
	s.record(ctx, actor, "document_updated", "document", id, nil)
	if updated.Status != current.Status {
		if err := s.audit.LogStatusChanged(ctx, actor, id, current.Status, updated.Status); err != nil {
			s.log.Warn("audit append failed", zap.String("document_id", id), zap.Error(err))
		}
	}
	return updated, nil
}

// DeleteDocument removes the document and its papers.
func (s *ArchiveService) DeleteDocument(ctx context.Context, actor repositories.Actor, id string) error {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.observer.DocumentChanged("deleted", doc.Category)
	s.record(ctx, actor, "document_deleted", "document", id, map[string]any{"reference": doc.Reference})
	return nil
}
