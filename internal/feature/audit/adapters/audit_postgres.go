// Package adapters provides repository implementations for the audit feature.
package adapters

import (
	"context"

	"gorm.io/gorm"

	"shop_backend/internal/feature/audit/domain/entity"
	"shop_backend/internal/feature/audit/usecase"
)

// auditPostgres is the database implementation of the AuditRepository interface.
type auditPostgres struct {
	db *gorm.DB
}

// Compile-time check to ensure auditPostgres implements AuditRepository.
var _ usecase.AuditRepository = (*auditPostgres)(nil)

// NewAuditPostgres creates a new instance of auditPostgres.
func NewAuditPostgres(db *gorm.DB) *auditPostgres {
	return &auditPostgres{db: db}
}

// Insert appends an audit entry.
func (r *auditPostgres) Insert(ctx context.Context, log *entity.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List returns entries newest-first with limit/offset pagination.
func (r *auditPostgres) List(ctx context.Context, limit, offset int) ([]*entity.AuditLog, error) {
	var logs []*entity.AuditLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}
