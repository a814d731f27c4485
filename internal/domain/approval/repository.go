package approval

import (
	"context"
	"time"
)

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	Status      Status
	Type        Type
	Priority    Priority
	From        *time.Time // submitted_date >= From
	To          *time.Time // submitted_date <  To
	Search      string     // title, submitter name, approval code
	SubmitterID *uint64
	Limit       int // 0 = no limit
	Offset      int
}

type Repository interface {
	// Create inserts a and assigns its ApprovalCode from the generated ID.
	Create(ctx context.Context, a *Approval) error

	GetByCode(ctx context.Context, code string) (*Approval, error)

	// GetByCodeForUpdate locks the row for the rest of the transaction.
	GetByCodeForUpdate(ctx context.Context, code string) (*Approval, error)

	// UpdateStatus persists status/approver/date/notes/version of a, but only
	// if the stored version still equals expectedVersion.
	UpdateStatus(ctx context.Context, a *Approval, expectedVersion uint32) error

	List(ctx context.Context, f Filter) ([]Approval, int64, error)

	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, h *History) error
	ListByApproval(ctx context.Context, approvalID uint64) ([]History, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	ListByApproval(ctx context.Context, approvalID uint64) ([]Comment, error)
}
