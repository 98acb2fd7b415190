package repositories

import (
	"context"

	"judicial-archive/internal/models"

	"gorm.io/datatypes"
)

func (s *GormStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) ListAudit(ctx context.Context, filter AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		query = query.Where("resource_id = ?", filter.ResourceID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc, id desc").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// AuditRepository records who did what to which resource on top of any
// Store backend.
type AuditRepository struct {
	store Store
}

func NewAuditRepository(store Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// Actor identifies the caller of a mutating operation.
type Actor struct {
	UserID    string
	IP        string
	UserAgent string
}

func (r *AuditRepository) Log(ctx context.Context, actor Actor, action, resourceType, resourceID string, metadata map[string]any) error {
	entry := models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    actor.IP,
		UserAgent:    actor.UserAgent,
	}
	if actor.UserID != "" {
		uid := actor.UserID
		entry.UserID = &uid
	}
	if metadata != nil {
		entry.Metadata = datatypes.JSONMap(metadata)
	}
	return r.store.AppendAudit(ctx, &entry)
}

func (r *AuditRepository) List(ctx context.Context, filter AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	return r.store.ListAudit(ctx, filter, limit, offset)
}

func (r *AuditRepository) LogStatusChanged(ctx context.Context, actor Actor, documentID string, from, to models.Status) error {
	meta := map[string]any{
		"from": string(from),
		"to":   string(to),
	}
	return r.Log(ctx, actor, "document_status_changed", "document", documentID, meta)
}

func (r *AuditRepository) LogRoleAssigned(ctx context.Context, actor Actor, userID string, role models.Role) error {
	return r.Log(ctx, actor, "role_assigned", "user", userID, map[string]any{"role": string(role)})
}
