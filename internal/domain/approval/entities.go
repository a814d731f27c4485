package approval

import (
	"errors"
	"fmt"
	"time"

	"hr-admin-backend/internal/domain/user"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("approval not found")
	ErrAlreadyDecided    = errors.New("approval already decided")
	ErrInvalidTransition = errors.New("approval not in a state that allows this action")
	ErrInvalidDecision   = errors.New("decision must be APPROVED or REJECTED")
	ErrVersionConflict   = errors.New("approval was modified concurrently (version conflict)")
	ErrForbidden         = errors.New("not allowed to act on this approval")
	ErrInvariant         = errors.New("approval invariant violated")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsDecision reports whether s is an outcome an approver can choose.
func (s Status) IsDecision() bool { return s == StatusApproved || s == StatusRejected }

type Type string

const (
	TypeExpenseClaim     Type = "EXPENSE_CLAIM"
	TypeUserAccess       Type = "USER_ACCESS"
	TypeContentPublish   Type = "CONTENT_PUBLISH"
	TypePurchaseOrder    Type = "PURCHASE_ORDER"
	TypeLeaveRequest     Type = "LEAVE_REQUEST"
	TypeBudgetIncrease   Type = "BUDGET_INCREASE"
	TypeEquipmentRequest Type = "EQUIPMENT_REQUEST"
	TypeTrainingRequest  Type = "TRAINING_REQUEST"
)

var Types = []Type{
	TypeExpenseClaim, TypeUserAccess, TypeContentPublish, TypePurchaseOrder,
	TypeLeaveRequest, TypeBudgetIncrease, TypeEquipmentRequest, TypeTrainingRequest,
}

func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Table: approvals
type Approval struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier, "APR-001"; derived from ID after insert.
	ApprovalCode  string              `gorm:"column:approval_code;size:32;not null;uniqueIndex:ux_approvals_code"`
	Type          Type                `gorm:"column:type;size:32;not null;index"`
	Title         string              `gorm:"column:title;size:255;not null"`
	Description   string              `gorm:"column:description;type:text;not null"`
	Amount        decimal.NullDecimal `gorm:"column:amount;type:decimal(18,2)"`
	Currency      string              `gorm:"column:currency;size:3"`
	Status        Status              `gorm:"column:status;size:16;not null;index"`
	Priority      Priority            `gorm:"column:priority;size:16;not null;index"`
	SubmitterID   uint64              `gorm:"column:submitter_id;not null;index"`
	Submitter     *user.User          `gorm:"foreignKey:SubmitterID"`
	ApproverID    *uint64             `gorm:"column:approver_id"`
	Approver      *user.User          `gorm:"foreignKey:ApproverID"`
	SubmittedDate time.Time           `gorm:"column:submitted_date;not null;index"`
	ApprovedDate  *time.Time          `gorm:"column:approved_date"`
	Notes         *string             `gorm:"column:notes;type:text"`
	Version       uint32              `gorm:"column:version;not null;default:1"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Approval) TableName() string { return "approvals" }

// Validate checks the status/approver invariant: an approval is PENDING
// exactly when it has neither an approver nor a decision date.
func (a *Approval) Validate() error {
	if !a.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvariant, a.Status)
	}
	pending := a.Status == StatusPending
	if pending && (a.ApproverID != nil || a.ApprovedDate != nil) {
		return fmt.Errorf("%w: pending approval %s has approver or decision date", ErrInvariant, a.ApprovalCode)
	}
	if !pending && (a.ApproverID == nil || a.ApprovedDate == nil) {
		return fmt.Errorf("%w: %s approval %s lacks approver or decision date", ErrInvariant, a.Status, a.ApprovalCode)
	}
	if a.Amount.Valid && a.Currency == "" {
		return fmt.Errorf("%w: amount without currency", ErrInvariant)
	}
	return nil
}

func (a *Approval) BeforeCreate(tx *gorm.DB) error { return a.Validate() }

// CanView: employees only see what they submitted.
func (a *Approval) CanView(actorID uint64, role user.Role) bool {
	return role.IsApprover() || a.SubmitterID == actorID
}

type Event string

const (
	EventCreated   Event = "CREATED"
	EventApproved  Event = "APPROVED"
	EventRejected  Event = "REJECTED"
	EventCancelled Event = "CANCELLED"
)

// EventFor maps a target status onto the history event that records it.
func EventFor(s Status) Event {
	switch s {
	case StatusApproved:
		return EventApproved
	case StatusRejected:
		return EventRejected
	case StatusCancelled:
		return EventCancelled
	}
	return EventCreated
}

type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

type Changes struct {
	Description string        `json:"description,omitempty"`
	Data        []FieldChange `json:"data"`
}

// Table: approval_histories. Rows are only ever inserted.
type History struct {
	ID         uint64                      `gorm:"column:id;primaryKey;autoIncrement"`
	ApprovalID uint64                      `gorm:"column:approval_id;not null;index"`
	Event      Event                       `gorm:"column:event;size:16;not null"`
	ActorID    uint64                      `gorm:"column:actor_id;not null"`
	Actor      *user.User                  `gorm:"foreignKey:ActorID"`
	FromStatus Status                      `gorm:"column:from_status;size:16"`
	ToStatus   Status                      `gorm:"column:to_status;size:16;not null"`
	Changes    datatypes.JSONType[Changes] `gorm:"column:changes"`
	CreatedAt  time.Time                   `gorm:"column:created_at;autoCreateTime"`
}

func (History) TableName() string { return "approval_histories" }

// Table: approval_comments
type Comment struct {
	ID         uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ApprovalID uint64     `gorm:"column:approval_id;not null;index"`
	AuthorID   uint64     `gorm:"column:author_id;not null"`
	Author     *user.User `gorm:"foreignKey:AuthorID"`
	Text       string     `gorm:"column:text;type:text;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Comment) TableName() string { return "approval_comments" }
