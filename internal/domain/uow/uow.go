package uow

import (
	"context"

	"hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/user"
)

// Repos is a set of repositories bound to one transaction.
type Repos struct {
	Users     user.Repository
	Approvals approval.Repository
	History   approval.HistoryRepository
	Comments  approval.CommentRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock approval first, then pass it in
	WithinApprovalTx(ctx context.Context, code string, fn func(r Repos, a *approval.Approval) error) error
}
