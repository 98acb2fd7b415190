package services

import (
	"context"
	"sort"
	"strings"

	"judicial-archive/internal/models"
)

// DocumentQuery selects documents. Search and the filter fields combine
// with AND; an empty query lists everything.
type DocumentQuery struct {
	Search   string
	Location LocationFilter
	Category models.Category
	Status   models.Status
	// CreatedBy restricts results to one creator.
	CreatedBy string
}

func (q DocumentQuery) IsZero() bool {
	return strings.TrimSpace(q.Search) == "" && q.Location.IsZero() &&
		q.Category == "" && q.Status == "" && q.CreatedBy == ""
}

// FindDocuments returns matching documents without joining them, newest
// first.
func (s *ArchiveService) FindDocuments(ctx context.Context, q DocumentQuery) ([]models.Document, error) {
	if q.Category != "" {
		c, err := models.ParseCategory(string(q.Category))
		if err != nil {
			return nil, invalid("%v", err)
		}
		q.Category = c
	}
	if q.Status != "" {
		st, err := models.ParseStatus(string(q.Status))
		if err != nil {
			return nil, invalid("%v", err)
		}
		q.Status = st
	}

	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var sections SectionSet
	if !q.Location.IsZero() {
		if sections, err = s.ResolveSections(ctx, q.Location); err != nil {
			return nil, err
		}
	}
	needle := foldText(q.Search)

	out := docs[:0]
	for _, d := range docs {
		if sections != nil && !sections.Has(d.SectionID) {
			continue
		}
		if q.Category != "" && d.Category != q.Category {
			continue
		}
		if q.Status != "" && d.Status != q.Status {
			continue
		}
		if q.CreatedBy != "" && d.CreatedBy != q.CreatedBy {
			continue
		}
		if needle != "" && !matchesSearch(&d, needle) {
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matchesSearch(d *models.Document, needle string) bool {
	return containsFolded(d.Title, needle) ||
		containsFolded(d.Reference, needle) ||
		containsFolded(string(d.Category), needle)
}

// ListDocuments runs q and joins every hit with its location, papers and
// creator.
func (s *ArchiveService) ListDocuments(ctx context.Context, q DocumentQuery) ([]models.DocumentDetails, error) {
	docs, err := s.FindDocuments(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.newJoiner().join(ctx, docs)
}
