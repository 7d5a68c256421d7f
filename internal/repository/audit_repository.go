package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskgate/internal/model"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, event *model.AuditEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create audit event failed: %w", err)
	}
	return nil
}

// Record satisfies the audit recorder contract when no broker is configured:
// events are written synchronously.
func (r *AuditRepository) Record(ctx context.Context, event model.AuditEvent) error {
	return r.Create(ctx, &event)
}
