package services

import (
	"context"
	"errors"

	"judicial-archive/internal/repositories"
)

// LocationFilter narrows documents to part of the filing hierarchy. When
// several fields are set only the most specific one is honored: section,
// then row, then block.
type LocationFilter struct {
	BlockID   string
	RowID     string
	SectionID string
}

func (f LocationFilter) IsZero() bool {
	return f.BlockID == "" && f.RowID == "" && f.SectionID == ""
}

// SectionSet is a set of section ids.
type SectionSet map[string]struct{}

func (s SectionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// ResolveSections expands a location filter into the section ids it
// denotes. Unknown ids resolve to an empty set.
func (s *ArchiveService) ResolveSections(ctx context.Context, f LocationFilter) (SectionSet, error) {
	set := SectionSet{}
	switch {
	case f.SectionID != "":
		if _, err := s.store.GetSection(ctx, f.SectionID); err != nil {
			return set, ignoreNotFound(err)
		}
		set[f.SectionID] = struct{}{}
	case f.RowID != "":
		if err := s.addRowSections(ctx, set, f.RowID); err != nil {
			return nil, err
		}
	case f.BlockID != "":
		rows, err := s.store.ListRows(ctx, f.BlockID)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			if err := s.addRowSections(ctx, set, r.ID); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func (s *ArchiveService) addRowSections(ctx context.Context, set SectionSet, rowID string) error {
	sections, err := s.store.ListSections(ctx, rowID)
	if err != nil {
		return err
	}
	for _, sec := range sections {
		set[sec.ID] = struct{}{}
	}
	return nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	return err
}
