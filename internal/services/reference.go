package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
)

// Location is a section together with its resolved ancestors.
type Location struct {
	Block   models.Block
	Row     models.Row
	Section models.Section
}

// Reference formats the dotted reference for sequence number seq.
func (l Location) Reference(seq int) string {
	return fmt.Sprintf("%s.%s.%s.%d", l.Block.Label, l.Row.Label, l.Section.Label, seq)
}

// Locate resolves a section and its row and block. A missing section is
// ErrNotFound; a missing ancestor is a *CorruptReferenceError.
func (s *ArchiveService) Locate(ctx context.Context, sectionID string) (*Location, error) {
	sec, err := s.store.GetSection(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("section %s: %w", sectionID, err)
	}
	row, err := s.store.GetRow(ctx, sec.RowID)
	if err != nil {
		return nil, ancestorErr(err, "section", sec.ID, "row "+sec.RowID)
	}
	block, err := s.store.GetBlock(ctx, row.BlockID)
	if err != nil {
		return nil, ancestorErr(err, "row", row.ID, "block "+row.BlockID)
	}
	return &Location{Block: *block, Row: *row, Section: *sec}, nil
}

func ancestorErr(err error, entity, id, missing string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &CorruptReferenceError{Entity: entity, ID: id, Missing: missing}
	}
	return err
}

// AllocateReference reserves the next sequence number in the section and
// returns the formatted reference. Sequence numbers come from the section's
// persistent counter, so they are never reused after a delete.
func (s *ArchiveService) AllocateReference(ctx context.Context, sectionID string) (string, error) {
	loc, err := s.Locate(ctx, sectionID)
	if err != nil {
		return "", err
	}
	seq, err := s.store.NextSequence(ctx, sectionID)
	if err != nil {
		return "", fmt.Errorf("next sequence for section %s: %w", sectionID, err)
	}
	s.observer.ReferenceAllocated()
	return loc.Reference(seq), nil
}

// validLabel rejects labels that would make a reference ambiguous.
func validLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", invalid("label is required")
	}
	if strings.Contains(label, ".") {
		return "", invalid("label %q must not contain '.'", label)
	}
	return label, nil
}
