// Package usecase implements the business logic for the audit feature.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"shop_backend/internal/feature/audit/domain/entity"
)

const (
	// defaultListLimit bounds a listing when the caller asks for nothing.
	defaultListLimit = 50

	// maxListLimit bounds a listing regardless of what the caller asks for.
	maxListLimit = 500
)

// AuditRepository abstracts the persistence layer for audit log entries.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AuditRepository interface {
	// Insert appends a new entry.
	Insert(ctx context.Context, log *entity.AuditLog) error

	// List returns entries newest-first.
	List(ctx context.Context, limit, offset int) ([]*entity.AuditLog, error)
}

// AuditUsecase records and lists authentication events.
type AuditUsecase struct {
	logs AuditRepository
}

// NewAuditUsecase creates a new instance of AuditUsecase.
func NewAuditUsecase(logs AuditRepository) *AuditUsecase {
	return &AuditUsecase{logs: logs}
}

// Record appends an audit entry. Recording is best effort: a storage
// failure is logged and swallowed so it never fails the original request.
func (u *AuditUsecase) Record(ctx context.Context, userID uint, email, action, ip, userAgent string) {
	entry := &entity.AuditLog{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}
	if err := u.logs.Insert(ctx, entry); err != nil {
		slog.Warn("failed to record audit log", "action", action, "user_id", userID, "error", err)
	}
}

// List returns audit entries newest-first, clamping limit to sane bounds.
func (u *AuditUsecase) List(ctx context.Context, limit, offset int) ([]*entity.AuditLog, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return u.logs.List(ctx, limit, offset)
}
