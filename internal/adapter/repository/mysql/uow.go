package mysql

import (
	"context"

	"hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// Repos returns repositories bound to db outside any transaction.
func Repos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Users:     &UserRepository{db: db},
		Approvals: &ApprovalRepository{db: db},
		History:   &HistoryRepository{db: db},
		Comments:  &CommentRepository{db: db},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos(tx))
	})
}

func (u *GormUoW) WithinApprovalTx(ctx context.Context, code string, fn func(r uow.Repos, a *approval.Approval) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := Repos(tx)
		// lock the approval row up-front to prevent races
		a, err := r.Approvals.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
