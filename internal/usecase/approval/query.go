package approval

import (
	"context"
	"strings"
	"time"

	domain "hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/user"
	"hr-admin-backend/internal/domain/validation"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	dateLayout = "2006-01-02"
)

// visible loads an approval and applies the per-role view rule.
func (u *Usecase) visible(ctx context.Context, actor Actor, code string) (*domain.Approval, error) {
	a, err := u.repos.Approvals.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !a.CanView(actor.ID, actor.Role) {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

func (u *Usecase) Get(ctx context.Context, actor Actor, code string) (*ApprovalDTO, error) {
	a, err := u.visible(ctx, actor, code)
	if err != nil {
		return nil, err
	}
	dto := toDTO(a)
	return &dto, nil
}

func (u *Usecase) History(ctx context.Context, actor Actor, code string) ([]HistoryDTO, error) {
	a, err := u.visible(ctx, actor, code)
	if err != nil {
		return nil, err
	}
	rows, err := u.repos.History.ListByApproval(ctx, a.ID)
	if err != nil {
		return nil, errors.Wrap(err, "approval: list history")
	}
	out := make([]HistoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toHistoryDTO(&rows[i]))
	}
	return out, nil
}

func (u *Usecase) Comments(ctx context.Context, actor Actor, code string) ([]CommentDTO, error) {
	a, err := u.visible(ctx, actor, code)
	if err != nil {
		return nil, err
	}
	rows, err := u.repos.Comments.ListByApproval(ctx, a.ID)
	if err != nil {
		return nil, errors.Wrap(err, "approval: list comments")
	}
	out := make([]CommentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toCommentDTO(&rows[i]))
	}
	return out, nil
}

// filterFor turns a ListInput into a repository filter without paging.
func filterFor(actor Actor, in ListInput) (domain.Filter, error) {
	var (
		f    domain.Filter
		verr validation.Error
	)
	if s := strings.TrimSpace(in.Status); s != "" {
		f.Status = domain.Status(strings.ToUpper(s))
		if !f.Status.Valid() {
			verr.Add("status", "must be one of PENDING APPROVED REJECTED CANCELLED")
		}
	}
	if s := strings.TrimSpace(in.Type); s != "" {
		f.Type = domain.Type(strings.ToUpper(s))
		if !f.Type.Valid() {
			verr.Add("type", "is not a known approval type")
		}
	}
	if s := strings.TrimSpace(in.Priority); s != "" {
		f.Priority = domain.Priority(strings.ToUpper(s))
		if !f.Priority.Valid() {
			verr.Add("priority", "must be one of LOW MEDIUM HIGH URGENT")
		}
	}
	if s := strings.TrimSpace(in.From); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			verr.Add("from", "must be a date in YYYY-MM-DD form")
		} else {
			f.From = &d
		}
	}
	if s := strings.TrimSpace(in.To); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			verr.Add("to", "must be a date in YYYY-MM-DD form")
		} else {
			// inclusive day; the repository bound is exclusive
			end := d.AddDate(0, 0, 1)
			f.To = &end
		}
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		verr.Add("from", "must not be after to")
	}
	f.Search = strings.TrimSpace(in.Search)
	if actor.Role == user.RoleEmployee || !actor.Role.Valid() {
		id := actor.ID
		f.SubmitterID = &id
	}
	return f, verr.Err()
}

func (u *Usecase) List(ctx context.Context, actor Actor, in ListInput) (*Page, error) {
	f, err := filterFor(actor, in)
	if err != nil {
		return nil, err
	}
	page, limit := in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit

	rows, total, err := u.repos.Approvals.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "approval: list")
	}
	items := make([]ApprovalDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toDTO(&rows[i]))
	}
	return &Page{Items: items, Page: page, Limit: limit, Total: total}, nil
}

// ListAll returns every approval matching in, in list order. Paging fields
// are ignored.
func (u *Usecase) ListAll(ctx context.Context, actor Actor, in ListInput) ([]ApprovalDTO, error) {
	f, err := filterFor(actor, in)
	if err != nil {
		return nil, err
	}
	rows, _, err := u.repos.Approvals.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "approval: list all")
	}
	out := make([]ApprovalDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return out, nil
}

// Stats counts approvals per status. Results are cached until the next write
// or the cache TTL, whichever comes first.
func (u *Usecase) Stats(ctx context.Context, actor Actor) (*Stats, error) {
	if !actor.Role.IsApprover() {
		return nil, domain.ErrForbidden
	}
	var cached Stats
	hit, err := u.cache.GetJSON(ctx, statsCacheKey, &cached)
	if err != nil {
		log.WithError(err).Warn("stats cache read failed")
	}
	if hit {
		return &cached, nil
	}

	counts, err := u.repos.Approvals.CountByStatus(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "approval: count by status")
	}
	s := &Stats{
		Pending:   counts[domain.StatusPending],
		Approved:  counts[domain.StatusApproved],
		Rejected:  counts[domain.StatusRejected],
		Cancelled: counts[domain.StatusCancelled],
	}
	s.Total = s.Pending + s.Approved + s.Rejected + s.Cancelled
	if err := u.cache.SetJSON(ctx, statsCacheKey, s, u.opts.StatsTTL); err != nil {
		log.WithError(err).Warn("stats cache write failed")
	}
	return s, nil
}
