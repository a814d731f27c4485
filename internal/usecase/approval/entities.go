package approval

import (
	"time"

	domain "hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/user"
	"hr-admin-backend/pkg/money"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID     uint64
	UserID string
	Name   string
	Role   user.Role
}

type CreateInput struct {
	Type        string
	Title       string
	Description string
	Amount      string // optional; "100.00" or legacy "£100.00"
	Currency    string // optional ISO code
	Priority    string // optional; MEDIUM when empty
}

type DecideInput struct {
	Decision string
	Notes    *string
	// ExpectedVersion, when set, must equal the stored version.
	ExpectedVersion *uint32
}

type BulkDecideInput struct {
	ApprovalIDs []string
	Decision    string
	Notes       *string
}

type BulkItemResult struct {
	ApprovalID string `json:"approval_id"`
	Success    bool   `json:"success"`
	Status     string `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
}

type BulkResult struct {
	Results   []BulkItemResult `json:"results"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

// ListInput mirrors the list query string. Dates are YYYY-MM-DD and both
// ends are inclusive.
type ListInput struct {
	Status   string
	Type     string
	Priority string
	From     string
	To       string
	Search   string
	Page     int
	Limit    int
}

type Page struct {
	Items []ApprovalDTO `json:"items"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
}

type Stats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Cancelled int64 `json:"cancelled"`
}

type UserRef struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type ApprovalDTO struct {
	ApprovalID    string     `json:"approval_id"`
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Amount        *string    `json:"amount"`
	Currency      string     `json:"currency,omitempty"`
	AmountDisplay string     `json:"amount_display,omitempty"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	Submitter     *UserRef   `json:"submitter"`
	Approver      *UserRef   `json:"approver"`
	SubmittedDate time.Time  `json:"submitted_date"`
	ApprovedDate  *time.Time `json:"approved_date"`
	Notes         *string    `json:"notes"`
	Version       uint32     `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type HistoryDTO struct {
	ID         uint64         `json:"id"`
	Event      string         `json:"event"`
	Actor      *UserRef       `json:"actor"`
	FromStatus string         `json:"from_status,omitempty"`
	ToStatus   string         `json:"to_status"`
	Changes    domain.Changes `json:"changes"`
	CreatedAt  time.Time      `json:"created_at"`
}

type CommentDTO struct {
	ID        uint64    `json:"id"`
	Author    *UserRef  `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func userRef(u *user.User) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{UserID: u.UserID, Name: u.Name}
}

func toDTO(a *domain.Approval) ApprovalDTO {
	dto := ApprovalDTO{
		ApprovalID:    a.ApprovalCode,
		Type:          string(a.Type),
		Title:         a.Title,
		Description:   a.Description,
		Status:        string(a.Status),
		Priority:      string(a.Priority),
		Submitter:     userRef(a.Submitter),
		Approver:      userRef(a.Approver),
		SubmittedDate: a.SubmittedDate,
		ApprovedDate:  a.ApprovedDate,
		Notes:         a.Notes,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.Amount.Valid {
		s := a.Amount.Decimal.StringFixed(money.Scale)
		dto.Amount = &s
		dto.Currency = a.Currency
		dto.AmountDisplay = money.Format(a.Amount.Decimal, a.Currency)
	}
	return dto
}

func toHistoryDTO(h *domain.History) HistoryDTO {
	return HistoryDTO{
		ID:         h.ID,
		Event:      string(h.Event),
		Actor:      userRef(h.Actor),
		FromStatus: string(h.FromStatus),
		ToStatus:   string(h.ToStatus),
		Changes:    h.Changes.Data(),
		CreatedAt:  h.CreatedAt,
	}
}

func toCommentDTO(c *domain.Comment) CommentDTO {
	return CommentDTO{ID: c.ID, Author: userRef(c.Author), Text: c.Text, CreatedAt: c.CreatedAt}
}
