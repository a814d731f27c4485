package approval

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	domain "hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/uow"
	"hr-admin-backend/internal/domain/validation"
	"hr-admin-backend/pkg/money"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 5000
	maxNotesLen       = 2000
	maxCommentLen     = 2000
	maxBulkIDs        = 100

	statsCacheKey = "approvals:stats"
)

// Cache is the subset of a JSON cache the service uses for stats.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// nopCache always misses. NewUsecase falls back to it when no cache is given.
type nopCache struct{}

func (nopCache) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (nopCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (nopCache) Delete(context.Context, ...string) error                   { return nil }

type Options struct {
	// AllowRedecide lets an approver flip APPROVED to REJECTED or back.
	// CANCELLED stays terminal either way.
	AllowRedecide   bool
	DefaultCurrency string
	StatsTTL        time.Duration
}

type Usecase struct {
	uow   uow.UnitOfWork
	repos uow.Repos
	cache Cache
	opts  Options
	now   func() time.Time
}

// NewUsecase: repos serve reads outside a transaction, tx serves every write.
func NewUsecase(tx uow.UnitOfWork, repos uow.Repos, cache Cache, opts Options) *Usecase {
	if cache == nil {
		cache = nopCache{}
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "GBP"
	}
	if opts.StatsTTL <= 0 {
		opts.StatsTTL = 30 * time.Second
	}
	return &Usecase{
		uow:   tx,
		repos: repos,
		cache: cache,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) Create(ctx context.Context, actor Actor, in CreateInput) (*ApprovalDTO, error) {
	a, err := u.newApproval(actor, in)
	if err != nil {
		return nil, err
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Approvals.Create(ctx, a); err != nil {
			return errors.Wrap(err, "approval: create")
		}
		data := []domain.FieldChange{
			{Field: "status", OldValue: nil, NewValue: a.Status},
			{Field: "type", OldValue: nil, NewValue: a.Type},
			{Field: "title", OldValue: nil, NewValue: a.Title},
			{Field: "priority", OldValue: nil, NewValue: a.Priority},
		}
		if a.Amount.Valid {
			data = append(data, domain.FieldChange{Field: "amount", NewValue: money.Format(a.Amount.Decimal, a.Currency)})
		}
		h := &domain.History{
			ApprovalID: a.ID,
			Event:      domain.EventCreated,
			ActorID:    actor.ID,
			ToStatus:   a.Status,
			Changes:    datatypes.NewJSONType(domain.Changes{Description: "Approval submitted", Data: data}),
		}
		return errors.Wrap(r.History.Append(ctx, h), "approval: append history")
	})
	if err != nil {
		return nil, err
	}

	u.invalidateStats(ctx)
	log.WithFields(log.Fields{"approval_id": a.ApprovalCode, "actor": actor.UserID, "type": a.Type}).
		Info("approval submitted")
	return u.reload(ctx, a.ApprovalCode)
}

func (u *Usecase) newApproval(actor Actor, in CreateInput) (*domain.Approval, error) {
	var verr validation.Error

	typ := domain.Type(strings.ToUpper(strings.TrimSpace(in.Type)))
	if !typ.Valid() {
		verr.Add("type", "is not a known approval type")
	}
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		verr.Add("title", "is required")
	case utf8.RuneCountInString(title) > maxTitleLen:
		verr.Add("title", "must be at most 255 characters")
	}
	desc := strings.TrimSpace(in.Description)
	switch {
	case desc == "":
		verr.Add("description", "is required")
	case utf8.RuneCountInString(desc) > maxDescriptionLen:
		verr.Add("description", "must be at most 5000 characters")
	}
	prio := domain.PriorityMedium
	if p := strings.TrimSpace(in.Priority); p != "" {
		prio = domain.Priority(strings.ToUpper(p))
		if !prio.Valid() {
			verr.Add("priority", "must be one of LOW MEDIUM HIGH URGENT")
		}
	}

	var amount decimal.NullDecimal
	var currency string
	if strings.TrimSpace(in.Amount) != "" {
		d, cur, err := money.Parse(in.Amount, in.Currency, u.opts.DefaultCurrency)
		switch {
		case errors.Is(err, money.ErrCurrency), errors.Is(err, money.ErrCurrencyClash):
			verr.Add("currency", err.Error())
		case err != nil:
			verr.Add("amount", err.Error())
		default:
			amount, currency = decimal.NewNullDecimal(d), cur
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	return &domain.Approval{
		Type:          typ,
		Title:         title,
		Description:   desc,
		Amount:        amount,
		Currency:      currency,
		Status:        domain.StatusPending,
		Priority:      prio,
		SubmitterID:   actor.ID,
		SubmittedDate: u.now(),
		Version:       1,
	}, nil
}

func validateNotes(notes *string) error {
	if notes != nil && utf8.RuneCountInString(*notes) > maxNotesLen {
		return validation.Field("notes", "must be at most 2000 characters")
	}
	return nil
}

func parseDecision(s string) (domain.Status, error) {
	d := domain.Status(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsDecision() {
		return "", domain.ErrInvalidDecision
	}
	return d, nil
}

// Decide moves an approval to APPROVED or REJECTED. The status write and its
// history row commit together.
func (u *Usecase) Decide(ctx context.Context, actor Actor, code string, in DecideInput) (*ApprovalDTO, error) {
	if !actor.Role.IsApprover() {
		return nil, domain.ErrForbidden
	}
	decision, err := parseDecision(in.Decision)
	if err != nil {
		return nil, err
	}
	if err := validateNotes(in.Notes); err != nil {
		return nil, err
	}
	if err := u.decide(ctx, actor, code, decision, in.Notes, in.ExpectedVersion); err != nil {
		return nil, err
	}
	u.invalidateStats(ctx)
	return u.reload(ctx, code)
}

func (u *Usecase) decide(ctx context.Context, actor Actor, code string, decision domain.Status, notes *string, expected *uint32) error {
	return u.uow.WithinApprovalTx(ctx, code, func(r uow.Repos, a *domain.Approval) error {
		if expected != nil && *expected != a.Version {
			return domain.ErrVersionConflict
		}
		switch a.Status {
		case domain.StatusPending:
		case domain.StatusCancelled:
			return domain.ErrInvalidTransition
		default:
			if !u.opts.AllowRedecide || a.Status == decision {
				return domain.ErrAlreadyDecided
			}
		}
		return u.transition(ctx, r, a, actor, decision, notes)
	})
}

// transition applies a status change to a locked approval and records it.
func (u *Usecase) transition(ctx context.Context, r uow.Repos, a *domain.Approval, actor Actor, to domain.Status, notes *string) error {
	from := a.Status
	prevVersion := a.Version
	prevNotes := a.Notes
	var prevApprover any
	if a.Approver != nil {
		prevApprover = a.Approver.UserID
	}

	now := u.now()
	actorID := actor.ID
	a.Status = to
	a.ApproverID = &actorID
	a.Approver = nil
	a.ApprovedDate = &now
	if notes != nil {
		n := strings.TrimSpace(*notes)
		a.Notes = &n
	}
	a.Version = prevVersion + 1
	if err := a.Validate(); err != nil {
		return err
	}
	if err := r.Approvals.UpdateStatus(ctx, a, prevVersion); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		return errors.Wrap(err, "approval: update status")
	}

	data := []domain.FieldChange{
		{Field: "status", OldValue: from, NewValue: to},
		{Field: "approver", OldValue: prevApprover, NewValue: actor.UserID},
		{Field: "approved_date", NewValue: now.Format(time.RFC3339)},
	}
	if notes != nil {
		data = append(data, domain.FieldChange{Field: "notes", OldValue: derefOrNil(prevNotes), NewValue: *a.Notes})
	}
	h := &domain.History{
		ApprovalID: a.ID,
		Event:      domain.EventFor(to),
		ActorID:    actor.ID,
		FromStatus: from,
		ToStatus:   to,
		Changes:    datatypes.NewJSONType(domain.Changes{Description: "Status changed to " + string(to), Data: data}),
	}
	if err := r.History.Append(ctx, h); err != nil {
		return errors.Wrap(err, "approval: append history")
	}

	log.WithFields(log.Fields{
		"approval_id": a.ApprovalCode,
		"actor":       actor.UserID,
		"from":        from,
		"to":          to,
		"version":     a.Version,
	}).Info("approval status changed")
	return nil
}

func derefOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// BulkDecide applies one decision to many approvals. Each id runs in its own
// transaction; a failure on one id does not undo the others.
func (u *Usecase) BulkDecide(ctx context.Context, actor Actor, in BulkDecideInput) (*BulkResult, error) {
	if !actor.Role.IsApprover() {
		return nil, domain.ErrForbidden
	}
	decision, err := parseDecision(in.Decision)
	if err != nil {
		return nil, err
	}
	if err := validateNotes(in.Notes); err != nil {
		return nil, err
	}
	codes := dedupe(in.ApprovalIDs)
	switch {
	case len(codes) == 0:
		return nil, validation.Field("approval_ids", "must contain at least one id")
	case len(codes) > maxBulkIDs:
		return nil, validation.Field("approval_ids", "must contain at most 100 ids")
	}

	res := &BulkResult{Results: make([]BulkItemResult, 0, len(codes))}
	for _, code := range codes {
		item := BulkItemResult{ApprovalID: code}
		if err := u.decide(ctx, actor, code, decision, in.Notes, nil); err != nil {
			item.Error = PublicMessage(err)
			res.Failed++
			if item.Error == msgInternal {
				log.WithError(err).WithField("approval_id", code).Error("bulk decision failed")
			}
		} else {
			item.Success = true
			item.Status = string(decision)
			res.Succeeded++
		}
		res.Results = append(res.Results, item)
	}
	if res.Succeeded > 0 {
		u.invalidateStats(ctx)
	}
	log.WithFields(log.Fields{
		"actor":     actor.UserID,
		"decision":  decision,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	}).Info("bulk decision applied")
	return res, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Cancel withdraws a PENDING approval. The submitter or any approver may do it.
func (u *Usecase) Cancel(ctx context.Context, actor Actor, code string, notes *string) (*ApprovalDTO, error) {
	if err := validateNotes(notes); err != nil {
		return nil, err
	}
	err := u.uow.WithinApprovalTx(ctx, code, func(r uow.Repos, a *domain.Approval) error {
		if a.SubmitterID != actor.ID && !actor.Role.IsApprover() {
			return domain.ErrForbidden
		}
		switch a.Status {
		case domain.StatusPending:
		case domain.StatusCancelled:
			return domain.ErrInvalidTransition
		default:
			return domain.ErrAlreadyDecided
		}
		return u.transition(ctx, r, a, actor, domain.StatusCancelled, notes)
	})
	if err != nil {
		return nil, err
	}
	u.invalidateStats(ctx)
	return u.reload(ctx, code)
}

func (u *Usecase) AddComment(ctx context.Context, actor Actor, code, text string) (*CommentDTO, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, validation.Field("text", "is required")
	case utf8.RuneCountInString(text) > maxCommentLen:
		return nil, validation.Field("text", "must be at most 2000 characters")
	}
	a, err := u.visible(ctx, actor, code)
	if err != nil {
		return nil, err
	}
	c := &domain.Comment{ApprovalID: a.ID, AuthorID: actor.ID, Text: text}
	if err := u.repos.Comments.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "approval: add comment")
	}
	dto := toCommentDTO(c)
	dto.Author = &UserRef{UserID: actor.UserID, Name: actor.Name}
	return &dto, nil
}

func (u *Usecase) reload(ctx context.Context, code string) (*ApprovalDTO, error) {
	a, err := u.repos.Approvals.GetByCode(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "approval: reload")
	}
	dto := toDTO(a)
	return &dto, nil
}

func (u *Usecase) invalidateStats(ctx context.Context) {
	if err := u.cache.Delete(ctx, statsCacheKey); err != nil {
		log.WithError(err).Warn("stats cache invalidation failed")
	}
}
