package services

import (
	"context"
	"errors"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
)

// joiner assembles DocumentDetails for a batch of documents, caching the
// locations and creators it has already resolved.
type joiner struct {
	svc      *ArchiveService
	sections map[string]*Location
	users    map[string]*models.User
}

func (s *ArchiveService) newJoiner() *joiner {
	return &joiner{
		svc:      s,
		sections: make(map[string]*Location),
		users:    make(map[string]*models.User),
	}
}

func (j *joiner) location(ctx context.Context, doc *models.Document) (*Location, error) {
	if loc, ok := j.sections[doc.SectionID]; ok {
		return loc, nil
	}
	loc, err := j.svc.Locate(ctx, doc.SectionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &CorruptReferenceError{Entity: "document", ID: doc.ID, Missing: "section " + doc.SectionID}
	}
	if err != nil {
		return nil, err
	}
	j.sections[doc.SectionID] = loc
	return loc, nil
}

func (j *joiner) creator(ctx context.Context, doc *models.Document) (*models.User, error) {
	if u, ok := j.users[doc.CreatedBy]; ok {
		return u, nil
	}
	u, err := j.svc.store.GetUser(ctx, doc.CreatedBy)
	if err != nil {
		return nil, ancestorErr(err, "document", doc.ID, "creator "+doc.CreatedBy)
	}
	j.users[doc.CreatedBy] = u
	return u, nil
}

func (j *joiner) join(ctx context.Context, docs []models.Document) ([]models.DocumentDetails, error) {
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	papers, err := j.svc.store.ListPapers(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byDoc := make(map[string][]models.Paper, len(docs))
	for _, p := range papers {
		byDoc[p.DocumentID] = append(byDoc[p.DocumentID], p)
	}

	out := make([]models.DocumentDetails, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		loc, err := j.location(ctx, doc)
		if err != nil {
			return nil, err
		}
		creator, err := j.creator(ctx, doc)
		if err != nil {
			return nil, err
		}
		docPapers := byDoc[doc.ID]
		if docPapers == nil {
			docPapers = []models.Paper{}
		}
		out = append(out, models.DocumentDetails{
			Document: *doc,
			Block:    loc.Block,
			Row:      loc.Row,
			Section:  loc.Section,
			Papers:   docPapers,
			Creator:  *creator,
		})
	}
	return out, nil
}

// Details joins a document with its location, papers (oldest first) and
// creator.
func (s *ArchiveService) Details(ctx context.Context, doc *models.Document) (*models.DocumentDetails, error) {
	joined, err := s.newJoiner().join(ctx, []models.Document{*doc})
	if err != nil {
		return nil, err
	}
	return &joined[0], nil
}

func (s *ArchiveService) GetDocument(ctx context.Context, id string) (*models.DocumentDetails, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Details(ctx, doc)
}
