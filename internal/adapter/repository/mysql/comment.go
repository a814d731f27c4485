package mysql

import (
	"context"

	approvalDomain "hr-admin-backend/internal/domain/approval"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) *CommentRepository { return &CommentRepository{db: db} }

func (r *CommentRepository) Create(ctx context.Context, c *approvalDomain.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *CommentRepository) ListByApproval(ctx context.Context, approvalID uint64) ([]approvalDomain.Comment, error) {
	var out []approvalDomain.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("approval_id = ?", approvalID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
