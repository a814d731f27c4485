package mysql

import (
	"context"

	approvalDomain "hr-admin-backend/internal/domain/approval"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryRepository only inserts and reads; the audit trail is never rewritten.
type HistoryRepository struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Append(ctx context.Context, h *approvalDomain.History) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(h).Error
}

func (r *HistoryRepository) ListByApproval(ctx context.Context, approvalID uint64) ([]approvalDomain.History, error) {
	var out []approvalDomain.History
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("approval_id = ?", approvalID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
