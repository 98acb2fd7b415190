package repositories

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"judicial-archive/internal/models"
)

// MemoryStore keeps every table in process memory. Contents live as long as
// the value does; there is no persistence.
type MemoryStore struct {
	mu sync.RWMutex

	users     *table[models.User]
	blocks    *table[models.Block]
	rows      *table[models.Row]
	sections  *table[models.Section]
	documents *table[models.Document]
	papers    *table[models.Paper]
	audit     []models.AuditLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     newTable[models.User](),
		blocks:    newTable[models.Block](),
		rows:      newTable[models.Row](),
		sections:  newTable[models.Section](),
		documents: newTable[models.Document](),
		papers:    newTable[models.Paper](),
	}
}

// table is a keyed map that remembers insertion order so listings are
// stable.
type table[T any] struct {
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) get(id string) (*T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v *T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(k string) bool { return k == id })
	return true
}

func (t *table[T]) each(fn func(*T) bool) {
	for _, id := range t.order {
		if !fn(t.rows[id]) {
			return
		}
	}
}

func (t *table[T]) filter(keep func(*T) bool) []T {
	out := make([]T, 0)
	t.each(func(v *T) bool {
		if keep == nil || keep(v) {
			out = append(out, *v)
		}
		return true
	})
	return out
}

func stamp(ts *time.Time) {
	if ts.IsZero() {
		*ts = time.Now()
	}
}

// Users

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.User
	s.users.each(func(u *models.User) bool {
		if u.Username == username {
			cp := *u
			found = &cp
			return false
		}
		return true
	})
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *MemoryStore) ListUsers(context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.filter(nil), nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userConflict("", user.Username, user.Email) {
		return ErrDuplicate
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	stamp(&user.CreatedAt)
	cp := *user
	s.users.put(cp.ID, &cp)
	return nil
}

func (s *MemoryStore) userConflict(selfID, username, email string) bool {
	conflict := false
	s.users.each(func(u *models.User) bool {
		if u.ID != selfID && (u.Username == username || u.Email == email) {
			conflict = true
			return false
		}
		return true
	})
	return conflict
}

func (s *MemoryStore) UpdateUser(_ context.Context, id string, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	next := *u
	patch.Apply(&next)
	if s.userConflict(id, next.Username, next.Email) {
		return nil, ErrDuplicate
	}
	s.users.put(id, &next)
	cp := next
	return &cp, nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.get(id); !ok {
		return ErrNotFound
	}
	authored := false
	s.documents.each(func(d *models.Document) bool {
		authored = d.CreatedBy == id
		return !authored
	})
	if authored {
		return ErrInUse
	}
	s.users.remove(id)
	return nil
}

// Locations

func (s *MemoryStore) GetBlock(_ context.Context, id string) (*models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blocks.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) ListBlocks(context.Context) ([]models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := s.blocks.filter(nil)
	sort.SliceStable(blocks, func(i, j int) bool { return labelLess(blocks[i].Label, blocks[j].Label) })
	return blocks, nil
}

func (s *MemoryStore) CreateBlock(_ context.Context, block *models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup := false
	s.blocks.each(func(b *models.Block) bool {
		dup = b.Label == block.Label
		return !dup
	})
	if dup {
		return ErrDuplicate
	}
	if block.ID == "" {
		block.ID = models.NewID()
	}
	stamp(&block.CreatedAt)
	cp := *block
	s.blocks.put(cp.ID, &cp)
	return nil
}

func (s *MemoryStore) GetRow(_ context.Context, id string) (*models.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) ListRows(_ context.Context, blockID string) ([]models.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.rows.filter(func(r *models.Row) bool { return r.BlockID == blockID })
	sort.SliceStable(rows, func(i, j int) bool { return labelLess(rows[i].Label, rows[j].Label) })
	return rows, nil
}

func (s *MemoryStore) CreateRow(_ context.Context, row *models.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup := false
	s.rows.each(func(r *models.Row) bool {
		dup = r.BlockID == row.BlockID && r.Label == row.Label
		return !dup
	})
	if dup {
		return ErrDuplicate
	}
	if row.ID == "" {
		row.ID = models.NewID()
	}
	stamp(&row.CreatedAt)
	cp := *row
	s.rows.put(cp.ID, &cp)
	return nil
}

func (s *MemoryStore) GetSection(_ context.Context, id string) (*models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sec, ok := s.sections.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sec
	return &cp, nil
}

func (s *MemoryStore) ListSections(_ context.Context, rowID string) ([]models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sections := s.sections.filter(func(sec *models.Section) bool { return sec.RowID == rowID })
	sort.SliceStable(sections, func(i, j int) bool { return labelLess(sections[i].Label, sections[j].Label) })
	return sections, nil
}

func (s *MemoryStore) CreateSection(_ context.Context, section *models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup := false
	s.sections.each(func(sec *models.Section) bool {
		dup = sec.RowID == section.RowID && sec.Label == section.Label
		return !dup
	})
	if dup {
		return ErrDuplicate
	}
	if section.ID == "" {
		section.ID = models.NewID()
	}
	stamp(&section.CreatedAt)
	cp := *section
	s.sections.put(cp.ID, &cp)
	return nil
}

func (s *MemoryStore) NextSequence(_ context.Context, sectionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec, ok := s.sections.get(sectionID)
	if !ok {
		return 0, ErrNotFound
	}
	sec.LastSequence++
	return sec.LastSequence, nil
}

// Documents

func cloneDocument(d *models.Document) models.Document {
	cp := *d
	cp.Metadata = maps.Clone(d.Metadata)
	return cp
}

func (s *MemoryStore) GetDocument(_ context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.documents.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneDocument(d)
	return &cp, nil
}

func (s *MemoryStore) ListDocuments(context.Context) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Document, 0, len(s.documents.order))
	s.documents.each(func(d *models.Document) bool {
		out = append(out, cloneDocument(d))
		return true
	})
	return out, nil
}

func (s *MemoryStore) CreateDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.get(doc.CreatedBy); !ok {
		return fmt.Errorf("creator %s: %w", doc.CreatedBy, ErrNotFound)
	}
	dup := false
	s.documents.each(func(d *models.Document) bool {
		dup = d.Reference == doc.Reference
		return !dup
	})
	if dup {
		return ErrDuplicate
	}
	if doc.ID == "" {
		doc.ID = models.NewID()
	}
	stamp(&doc.CreatedAt)
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	cp := cloneDocument(doc)
	s.documents.put(cp.ID, &cp)
	return nil
}

func (s *MemoryStore) UpdateDocument(_ context.Context, id string, patch models.DocumentPatch) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.documents.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	stamp(&patch.UpdatedAt)
	next := cloneDocument(d)
	patch.Apply(&next)
	next.Metadata = maps.Clone(next.Metadata)
	s.documents.put(id, &next)
	cp := cloneDocument(&next)
	return &cp, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents.get(id); !ok {
		return ErrNotFound
	}
	for _, p := range s.papers.filter(func(p *models.Paper) bool { return p.DocumentID == id }) {
		s.papers.remove(p.ID)
	}
	s.documents.remove(id)
	return nil
}

// Papers

func (s *MemoryStore) GetPaper(_ context.Context, id string) (*models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.papers.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) ListPapers(_ context.Context, documentIDs ...string) ([]models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	papers := s.papers.filter(func(p *models.Paper) bool { return slices.Contains(documentIDs, p.DocumentID) })
	sort.SliceStable(papers, func(i, j int) bool { return papers[i].CreatedAt.Before(papers[j].CreatedAt) })
	return papers, nil
}

func (s *MemoryStore) CreatePaper(_ context.Context, paper *models.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if paper.ID == "" {
		paper.ID = models.NewID()
	}
	stamp(&paper.CreatedAt)
	cp := *paper
	s.papers.put(cp.ID, &cp)
	return nil
}

func (s *MemoryStore) UpdatePaper(_ context.Context, id string, patch models.PaperPatch) (*models.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.papers.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	next := *p
	patch.Apply(&next)
	s.papers.put(id, &next)
	cp := next
	return &cp, nil
}

func (s *MemoryStore) DeletePaper(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.papers.remove(id) {
		return ErrNotFound
	}
	return nil
}

// Audit

func (s *MemoryStore) AppendAudit(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = models.NewID()
	}
	stamp(&entry.CreatedAt)
	s.audit = append(s.audit, *entry)
	return nil
}

func (s *MemoryStore) ListAudit(_ context.Context, filter AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.AuditLog, 0)
	for i := len(s.audit) - 1; i >= 0; i-- {
		if filter.matches(s.audit[i]) {
			matched = append(matched, s.audit[i])
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.AuditLog{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// labelLess orders numeric labels numerically and everything else
// lexically, numbers first.
func labelLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return a < b
}
