package repositories

import (
	"context"
	"errors"

	"judicial-archive/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrInUse refuses deleting a record other records still point at.
	ErrInUse = errors.New("record still referenced")
)

// Store holds the authoritative state for every archive entity. Lookups and
// mutations on a missing id return ErrNotFound; inserts that would break a
// uniqueness rule return ErrDuplicate.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	// DeleteUser returns ErrInUse while the user has created documents.
	DeleteUser(ctx context.Context, id string) error

	GetBlock(ctx context.Context, id string) (*models.Block, error)
	ListBlocks(ctx context.Context) ([]models.Block, error)
	CreateBlock(ctx context.Context, block *models.Block) error

	GetRow(ctx context.Context, id string) (*models.Row, error)
	ListRows(ctx context.Context, blockID string) ([]models.Row, error)
	CreateRow(ctx context.Context, row *models.Row) error

	GetSection(ctx context.Context, id string) (*models.Section, error)
	ListSections(ctx context.Context, rowID string) ([]models.Section, error)
	CreateSection(ctx context.Context, section *models.Section) error
	// NextSequence atomically bumps the section's persistent counter and
	// returns the new value.
	NextSequence(ctx context.Context, sectionID string) (int, error)

	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	// CreateDocument returns ErrNotFound when doc.CreatedBy names no user.
	CreateDocument(ctx context.Context, doc *models.Document) error
	UpdateDocument(ctx context.Context, id string, patch models.DocumentPatch) (*models.Document, error)
	// DeleteDocument removes the document and every paper filed under it.
	DeleteDocument(ctx context.Context, id string) error

	GetPaper(ctx context.Context, id string) (*models.Paper, error)
	// ListPapers returns the papers of the given documents ordered by
	// creation time.
	ListPapers(ctx context.Context, documentIDs ...string) ([]models.Paper, error)
	CreatePaper(ctx context.Context, paper *models.Paper) error
	UpdatePaper(ctx context.Context, id string, patch models.PaperPatch) (*models.Paper, error)
	DeletePaper(ctx context.Context, id string) error

	AppendAudit(ctx context.Context, entry *models.AuditLog) error
	ListAudit(ctx context.Context, filter AuditFilter, limit, offset int) ([]models.AuditLog, int64, error)

	Ping(ctx context.Context) error
	Close() error
}

type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
}

func (f AuditFilter) matches(e models.AuditLog) bool {
	if f.UserID != "" && (e.UserID == nil || *e.UserID != f.UserID) {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if f.ResourceID != "" && e.ResourceID != f.ResourceID {
		return false
	}
	return true
}
