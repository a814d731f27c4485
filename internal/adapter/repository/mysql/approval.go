package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	approvalDomain "hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/pkg/id"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

// Tx helper (optional) — bind this repo to a transaction when needed.
func (r *ApprovalRepository) Tx(ctx context.Context, fn func(repo *ApprovalRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ApprovalRepository{db: tx})
	})
}

// FormatCode renders the public approval code for a numeric id.
func FormatCode(n uint64) string { return fmt.Sprintf("APR-%03d", n) }

// Create inserts under a throwaway unique code, then rewrites the code from
// the generated id. Call it inside a transaction.
func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Approval) error {
	db := r.db.WithContext(ctx)
	a.ApprovalCode = "tmp-" + id.NewID32()[:24]
	if err := db.Omit(clause.Associations).Create(a).Error; err != nil {
		return err
	}
	a.ApprovalCode = FormatCode(a.ID)
	return db.Model(&approvalDomain.Approval{}).
		Where("id = ?", a.ID).
		UpdateColumn("approval_code", a.ApprovalCode).Error
}

func (r *ApprovalRepository) GetByCode(ctx context.Context, code string) (*approvalDomain.Approval, error) {
	return r.get(r.db.WithContext(ctx), code)
}

func (r *ApprovalRepository) GetByCodeForUpdate(ctx context.Context, code string) (*approvalDomain.Approval, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), code)
}

func (r *ApprovalRepository) get(db *gorm.DB, code string) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	err := db.
		Preload("Submitter").
		Preload("Approver").
		Where("approval_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, approvalDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApprovalRepository) UpdateStatus(ctx context.Context, a *approvalDomain.Approval, expectedVersion uint32) error {
	res := r.db.WithContext(ctx).
		Model(&approvalDomain.Approval{}).
		Where("id = ? AND version = ?", a.ID, expectedVersion).
		Updates(map[string]any{
			"status":        a.Status,
			"approver_id":   a.ApproverID,
			"approved_date": a.ApprovedDate,
			"notes":         a.Notes,
			"version":       a.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return approvalDomain.ErrVersionConflict
	}
	return nil
}

// '!' rather than backslash: MySQL treats a backslash inside a string
// literal as an escape of its own.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func applyFilter(db *gorm.DB, f approvalDomain.Filter) *gorm.DB {
	q := db.Model(&approvalDomain.Approval{}).
		Joins("LEFT JOIN users AS submitter ON submitter.id = approvals.submitter_id")
	if f.Status != "" {
		q = q.Where("approvals.status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("approvals.type = ?", f.Type)
	}
	if f.Priority != "" {
		q = q.Where("approvals.priority = ?", f.Priority)
	}
	if f.From != nil {
		q = q.Where("approvals.submitted_date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("approvals.submitted_date < ?", f.To.UTC())
	}
	if f.SubmitterID != nil {
		q = q.Where("approvals.submitter_id = ?", *f.SubmitterID)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + likeEscaper.Replace(s) + "%"
		q = q.Where(
			"LOWER(approvals.title) LIKE ? ESCAPE '!' OR LOWER(submitter.name) LIKE ? ESCAPE '!' OR LOWER(approvals.approval_code) LIKE ? ESCAPE '!'",
			like, like, like,
		)
	}
	return q
}

// List returns the page described by f plus the unpaged total, most recently
// submitted first.
func (r *ApprovalRepository) List(ctx context.Context, f approvalDomain.Filter) ([]approvalDomain.Approval, int64, error) {
	var total int64
	if err := applyFilter(r.db.WithContext(ctx), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := applyFilter(r.db.WithContext(ctx), f).
		Select("approvals.*").
		Preload("Submitter").
		Preload("Approver").
		Order("approvals.submitted_date DESC").
		Order("approvals.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []approvalDomain.Approval
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ApprovalRepository) CountByStatus(ctx context.Context) (map[approvalDomain.Status]int64, error) {
	var rows []struct {
		Status approvalDomain.Status
		N      int64
	}
	err := r.db.WithContext(ctx).
		Model(&approvalDomain.Approval{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[approvalDomain.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
