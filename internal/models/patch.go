package models

import (
	"time"

	"gorm.io/datatypes"
)

// Patch types carry partial updates. A nil field keeps the stored value.

type UserPatch struct {
	Username     *string
	PasswordHash *string
	Email        *string
	FullName     *string
	Role         *Role
	IsActive     *bool
}

func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
}

func (p UserPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Username != nil {
		cols["username"] = *p.Username
	}
	if p.PasswordHash != nil {
		cols["password_hash"] = *p.PasswordHash
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.FullName != nil {
		cols["full_name"] = *p.FullName
	}
	if p.Role != nil {
		cols["role"] = *p.Role
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	return cols
}

type DocumentPatch struct {
	Title    *string
	Category *Category
	Status   *Status
	Metadata datatypes.JSONMap
	// UpdatedAt overrides the modification time; zero means now.
	UpdatedAt time.Time
}

func (p DocumentPatch) Apply(d *Document) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.Metadata != nil {
		d.Metadata = p.Metadata
	}
	if !p.UpdatedAt.IsZero() {
		d.UpdatedAt = p.UpdatedAt
	}
}

func (p DocumentPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Metadata != nil {
		cols["metadata"] = p.Metadata
	}
	if !p.UpdatedAt.IsZero() {
		cols["updated_at"] = p.UpdatedAt
	}
	return cols
}

type PaperPatch struct {
	Title         *string
	Content       *string
	AttachmentURL *string
	FileType      *string
	FileSize      *int64
}

func (p PaperPatch) Apply(pp *Paper) {
	if p.Title != nil {
		pp.Title = *p.Title
	}
	if p.Content != nil {
		pp.Content = ptr(*p.Content)
	}
	if p.AttachmentURL != nil {
		pp.AttachmentURL = ptr(*p.AttachmentURL)
	}
	if p.FileType != nil {
		pp.FileType = ptr(*p.FileType)
	}
	if p.FileSize != nil {
		pp.FileSize = ptr(*p.FileSize)
	}
}

func (p PaperPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Content != nil {
		cols["content"] = *p.Content
	}
	if p.AttachmentURL != nil {
		cols["attachment_url"] = *p.AttachmentURL
	}
	if p.FileType != nil {
		cols["file_type"] = *p.FileType
	}
	if p.FileSize != nil {
		cols["file_size"] = *p.FileSize
	}
	return cols
}

func ptr[T any](v T) *T { return &v }
