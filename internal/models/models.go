package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewID returns a fresh opaque entity identifier.
func NewID() string {
	return uuid.NewString()
}

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	FullName     string    `gorm:"not null" json:"fullName"`
	Role         Role      `gorm:"type:varchar(16);not null;default:viewer;index" json:"role"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime;index" json:"createdAt"`
}

type Block struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Label     string    `gorm:"not null;uniqueIndex" json:"label"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

type Row struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	BlockID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_rows_block_label" json:"blockId"`
	Label     string    `gorm:"not null;uniqueIndex:idx_rows_block_label" json:"label"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

type Section struct {
	ID    string `gorm:"type:varchar(36);primaryKey" json:"id"`
	RowID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_sections_row_label" json:"rowId"`
	Label string `gorm:"not null;uniqueIndex:idx_sections_row_label" json:"label"`
	// LastSequence is the highest document sequence ever handed out in this
	// section. It only grows, so deleted references are never reissued.
	LastSequence int       `gorm:"not null;default:0" json:"lastSequence"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

type Document struct {
	ID        string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	SectionID string            `gorm:"type:varchar(36);not null;index" json:"sectionId"`
	Reference string            `gorm:"not null;uniqueIndex" json:"reference"`
	Title     string            `gorm:"not null;index" json:"title"`
	Category  Category          `gorm:"type:varchar(32);not null;index" json:"category"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	Status    Status            `gorm:"type:varchar(16);not null;default:active;index" json:"status"`
	CreatedBy string            `gorm:"type:varchar(36);not null;index" json:"createdBy"`
	CreatedAt time.Time         `gorm:"not null;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

type Paper struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	DocumentID    string    `gorm:"type:varchar(36);not null;index" json:"documentId"`
	Title         string    `gorm:"not null" json:"title"`
	Content       *string   `gorm:"type:text" json:"content"`
	AttachmentURL *string   `gorm:"type:text" json:"attachmentUrl"`
	FileType      *string   `json:"fileType"`
	FileSize      *int64    `json:"fileSize"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime;index" json:"createdAt"`
}

type AuditLog struct {
	ID           string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       *string           `gorm:"type:varchar(36);index" json:"userId"`
	Action       string            `gorm:"not null;index" json:"action"`
	ResourceType string            `gorm:"not null;index" json:"resourceType"`
	ResourceID   string            `gorm:"type:varchar(36);not null;index" json:"resourceId"`
	IPAddress    string            `gorm:"not null" json:"ipAddress"`
	UserAgent    string            `gorm:"type:text" json:"userAgent"`
	Metadata     datatypes.JSONMap `json:"metadata"`
	CreatedAt    time.Time         `gorm:"not null;autoCreateTime;index" json:"createdAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error     { assignID(&u.ID); return nil }
func (b *Block) BeforeCreate(*gorm.DB) error    { assignID(&b.ID); return nil }
func (r *Row) BeforeCreate(*gorm.DB) error      { assignID(&r.ID); return nil }
func (s *Section) BeforeCreate(*gorm.DB) error  { assignID(&s.ID); return nil }
func (d *Document) BeforeCreate(*gorm.DB) error { assignID(&d.ID); return nil }
func (p *Paper) BeforeCreate(*gorm.DB) error    { assignID(&p.ID); return nil }
func (a *AuditLog) BeforeCreate(*gorm.DB) error { assignID(&a.ID); return nil }

func assignID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}

// DocumentDetails is a document joined with its filing location, papers
// and creator.
type DocumentDetails struct {
	Document
	Block   Block   `json:"block"`
	Row     Row     `json:"row"`
	Section Section `json:"section"`
	Papers  []Paper `json:"papers"`
	Creator User    `json:"creator"`
}

