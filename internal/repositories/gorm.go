package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"judicial-archive/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists the archive through gorm. It works against both the
// postgres and the sqlite dialect.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// lockRow adds a row lock on postgres. sqlite runs on a single connection,
// so its transactions are already serialized.
func lockRow(tx *gorm.DB, strength string) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: strength})
	}
	return tx
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func first[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func exists[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(new(T)).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Users

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](ctx, s.db, "id = ?", id)
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](ctx, s.db, "username = ?", username)
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at asc, id asc").Find(&users).Error
	return users, err
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	dup, err := exists[models.User](ctx, s.db, "username = ? OR email = ?", user.Username, user.Email)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicate
	}
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	current, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	patch.Apply(&next)
	dup, err := exists[models.User](ctx, s.db, "id <> ? AND (username = ? OR email = ?)", id, next.Username, next.Email)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicate
	}

	if cols := patch.Columns(); len(cols) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return nil, translate(err)
		}
	}
	return s.GetUser(ctx, id)
}

// DeleteUser holds the user row for update while it checks for documents,
// so a concurrent CreateDocument by the same user either lands first and
// blocks the delete or finds the user gone.
func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := lockRow(tx, clause.LockingStrengthUpdate).Where("id = ?", id).First(&u).Error; err != nil {
			return err
		}
		authored, err := exists[models.Document](ctx, tx, "created_by = ?", id)
		if err != nil {
			return err
		}
		if authored {
			return ErrInUse
		}
		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	}))
}

// Locations

func (s *GormStore) GetBlock(ctx context.Context, id string) (*models.Block, error) {
	return first[models.Block](ctx, s.db, "id = ?", id)
}

func (s *GormStore) ListBlocks(ctx context.Context) ([]models.Block, error) {
	var blocks []models.Block
	if err := s.db.WithContext(ctx).Find(&blocks).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(blocks, func(i, j int) bool { return labelLess(blocks[i].Label, blocks[j].Label) })
	return blocks, nil
}

func (s *GormStore) CreateBlock(ctx context.Context, block *models.Block) error {
	dup, err := exists[models.Block](ctx, s.db, "label = ?", block.Label)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicate
	}
	return translate(s.db.WithContext(ctx).Create(block).Error)
}

func (s *GormStore) GetRow(ctx context.Context, id string) (*models.Row, error) {
	return first[models.Row](ctx, s.db, "id = ?", id)
}

func (s *GormStore) ListRows(ctx context.Context, blockID string) ([]models.Row, error) {
	var rows []models.Row
	if err := s.db.WithContext(ctx).Where("block_id = ?", blockID).Find(&rows).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return labelLess(rows[i].Label, rows[j].Label) })
	return rows, nil
}

func (s *GormStore) CreateRow(ctx context.Context, row *models.Row) error {
	dup, err := exists[models.Row](ctx, s.db, "block_id = ? AND label = ?", row.BlockID, row.Label)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicate
	}
	return translate(s.db.WithContext(ctx).Create(row).Error)
}

func (s *GormStore) GetSection(ctx context.Context, id string) (*models.Section, error) {
	return first[models.Section](ctx, s.db, "id = ?", id)
}

func (s *GormStore) ListSections(ctx context.Context, rowID string) ([]models.Section, error) {
	var sections []models.Section
	if err := s.db.WithContext(ctx).Where("row_id = ?", rowID).Find(&sections).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(sections, func(i, j int) bool { return labelLess(sections[i].Label, sections[j].Label) })
	return sections, nil
}

func (s *GormStore) CreateSection(ctx context.Context, section *models.Section) error {
	dup, err := exists[models.Section](ctx, s.db, "row_id = ? AND label = ?", section.RowID, section.Label)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicate
	}
	return translate(s.db.WithContext(ctx).Create(section).Error)
}

// NextSequence bumps the counter with a single UPDATE so concurrent callers
// serialize on the row lock, then reads the value back in the same
// transaction.
func (s *GormStore) NextSequence(ctx context.Context, sectionID string) (int, error) {
	var next int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Section{}).
			Where("id = ?", sectionID).
			UpdateColumn("last_sequence", gorm.Expr("last_sequence + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Section{}).
			Where("id = ?", sectionID).
			Pluck("last_sequence", &next).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return next, nil
}

// Documents

func (s *GormStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return first[models.Document](ctx, s.db, "id = ?", id)
}

func (s *GormStore) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).Order("created_at asc, id asc").Find(&docs).Error
	return docs, err
}

func (s *GormStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var creator models.User
		err := lockRow(tx, clause.LockingStrengthShare).Where("id = ?", doc.CreatedBy).First(&creator).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("creator %s: %w", doc.CreatedBy, ErrNotFound)
		}
		if err != nil {
			return err
		}

		dup, err := exists[models.Document](ctx, tx, "reference = ?", doc.Reference)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicate
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now()
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = doc.CreatedAt
		}
		return tx.Create(doc).Error
	}))
}

func (s *GormStore) UpdateDocument(ctx context.Context, id string, patch models.DocumentPatch) (*models.Document, error) {
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now()
	}
	res := s.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Updates(patch.Columns())
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetDocument(ctx, id)
}

func (s *GormStore) DeleteDocument(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Document{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("document_id = ?", id).Delete(&models.Paper{}).Error
	})
}

// Papers

func (s *GormStore) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	return first[models.Paper](ctx, s.db, "id = ?", id)
}

func (s *GormStore) ListPapers(ctx context.Context, documentIDs ...string) ([]models.Paper, error) {
	papers := []models.Paper{}
	if len(documentIDs) == 0 {
		return papers, nil
	}
	err := s.db.WithContext(ctx).
		Where("document_id IN ?", documentIDs).
		Order("created_at asc, id asc").
		Find(&papers).Error
	return papers, err
}

func (s *GormStore) CreatePaper(ctx context.Context, paper *models.Paper) error {
	return translate(s.db.WithContext(ctx).Create(paper).Error)
}

func (s *GormStore) UpdatePaper(ctx context.Context, id string, patch models.PaperPatch) (*models.Paper, error) {
	if _, err := s.GetPaper(ctx, id); err != nil {
		return nil, err
	}
	if cols := patch.Columns(); len(cols) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Paper{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return nil, translate(err)
		}
	}
	return s.GetPaper(ctx, id)
}

func (s *GormStore) DeletePaper(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Paper{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
