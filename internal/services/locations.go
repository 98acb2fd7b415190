package services

import (
	"context"
	"fmt"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
)

func (s *ArchiveService) ListBlocks(ctx context.Context) ([]models.Block, error) {
	return s.store.ListBlocks(ctx)
}

// ListRows returns the rows of a block in label order.
func (s *ArchiveService) ListRows(ctx context.Context, blockID string) ([]models.Row, error) {
	if _, err := s.store.GetBlock(ctx, blockID); err != nil {
		return nil, err
	}
	return s.store.ListRows(ctx, blockID)
}

// ListSections returns the sections of a row in label order.
func (s *ArchiveService) ListSections(ctx context.Context, rowID string) ([]models.Section, error) {
	if _, err := s.store.GetRow(ctx, rowID); err != nil {
		return nil, err
	}
	return s.store.ListSections(ctx, rowID)
}

func (s *ArchiveService) CreateBlock(ctx context.Context, actor repositories.Actor, label string) (*models.Block, error) {
	label, err := validLabel(label)
	if err != nil {
		return nil, err
	}
	b := &models.Block{Label: label, CreatedAt: s.now()}
	if err := s.store.CreateBlock(ctx, b); err != nil {
		return nil, fmt.Errorf("block %q: %w", label, err)
	}
	s.record(ctx, actor, "block_created", "block", b.ID, map[string]any{"label": label})
	return b, nil
}

func (s *ArchiveService) CreateRow(ctx context.Context, actor repositories.Actor, blockID, label string) (*models.Row, error) {
	label, err := validLabel(label)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetBlock(ctx, blockID); err != nil {
		return nil, fmt.Errorf("block %s: %w", blockID, err)
	}
	r := &models.Row{BlockID: blockID, Label: label, CreatedAt: s.now()}
	if err := s.store.CreateRow(ctx, r); err != nil {
		return nil, fmt.Errorf("row %q: %w", label, err)
	}
	s.record(ctx, actor, "row_created", "row", r.ID, map[string]any{"label": label, "block_id": blockID})
	return r, nil
}

func (s *ArchiveService) CreateSection(ctx context.Context, actor repositories.Actor, rowID, label string) (*models.Section, error) {
	label, err := validLabel(label)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetRow(ctx, rowID); err != nil {
		return nil, fmt.Errorf("row %s: %w", rowID, err)
	}
	sec := &models.Section{RowID: rowID, Label: label, CreatedAt: s.now()}
	if err := s.store.CreateSection(ctx, sec); err != nil {
		return nil, fmt.Errorf("section %q: %w", label, err)
	}
	s.record(ctx, actor, "section_created", "section", sec.ID, map[string]any{"label": label, "row_id": rowID})
	return sec, nil
}
