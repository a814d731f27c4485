package approvalmock

import (
	"context"

	domain "hr-admin-backend/internal/domain/approval"
)

var (
	_ domain.Repository        = (*Repo)(nil)
	_ domain.HistoryRepository = (*HistoryRepo)(nil)
	_ domain.CommentRepository = (*CommentRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Reads default to context.Canceled, writes to nil.
type Repo struct {
	CreateFn             func(ctx context.Context, a *domain.Approval) error
	GetByCodeFn          func(ctx context.Context, code string) (*domain.Approval, error)
	GetByCodeForUpdateFn func(ctx context.Context, code string) (*domain.Approval, error)
	UpdateStatusFn       func(ctx context.Context, a *domain.Approval, expectedVersion uint32) error
	ListFn               func(ctx context.Context, f domain.Filter) ([]domain.Approval, int64, error)
	CountByStatusFn      func(ctx context.Context) (map[domain.Status]int64, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Approval) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByCode(ctx context.Context, code string) (*domain.Approval, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Approval, error) {
	if m.GetByCodeForUpdateFn != nil {
		return m.GetByCodeForUpdateFn(ctx, code)
	}
	return nil, context.Canceled
}

func (m *Repo) UpdateStatus(ctx context.Context, a *domain.Approval, expectedVersion uint32) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, a, expectedVersion)
	}
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Approval, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, context.Canceled
}

func (m *Repo) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx)
	}
	return nil, context.Canceled
}

// HistoryRepo records every appended row in Appended unless AppendFn is set.
type HistoryRepo struct {
	AppendFn         func(ctx context.Context, h *domain.History) error
	ListByApprovalFn func(ctx context.Context, approvalID uint64) ([]domain.History, error)

	Appended []*domain.History
}

func (m *HistoryRepo) Append(ctx context.Context, h *domain.History) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, h)
	}
	m.Appended = append(m.Appended, h)
	return nil
}

func (m *HistoryRepo) ListByApproval(ctx context.Context, approvalID uint64) ([]domain.History, error) {
	if m.ListByApprovalFn != nil {
		return m.ListByApprovalFn(ctx, approvalID)
	}
	return nil, context.Canceled
}

type CommentRepo struct {
	CreateFn         func(ctx context.Context, c *domain.Comment) error
	ListByApprovalFn func(ctx context.Context, approvalID uint64) ([]domain.Comment, error)
}

func (m *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *CommentRepo) ListByApproval(ctx context.Context, approvalID uint64) ([]domain.Comment, error) {
	if m.ListByApprovalFn != nil {
		return m.ListByApprovalFn(ctx, approvalID)
	}
	return nil, context.Canceled
}
