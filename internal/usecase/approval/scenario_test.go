package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"hr-admin-backend/internal/adapter/repository/mysql"
	domain "hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/user"
	"hr-admin-backend/internal/testutil/sqlitedb"

	"gorm.io/gorm"
)

type sqliteEnv struct {
	db    *gorm.DB
	uc    *Usecase
	sub   Actor
	other Actor
	adm   Actor
}

func asActor(u *user.User) Actor {
	return Actor{ID: u.ID, UserID: u.UserID, Name: u.Name, Role: u.Role}
}

func newSQLiteEnv(t *testing.T, opts Options) *sqliteEnv {
	t.Helper()
	db := sqlitedb.Open(t)
	return &sqliteEnv{
		db:    db,
		uc:    NewUsecase(mysql.NewGormUoW(db), mysql.Repos(db), nil, opts),
		sub:   asActor(sqlitedb.SeedUser(t, db, "John Smith", user.RoleEmployee)),
		other: asActor(sqlitedb.SeedUser(t, db, "Sara Jones", user.RoleEmployee)),
		adm:   asActor(sqlitedb.SeedUser(t, db, "Ada Admin", user.RoleAdmin)),
	}
}

func (e *sqliteEnv) create(t *testing.T, actor Actor, in CreateInput) string {
	t.Helper()
	dto, err := e.uc.Create(context.Background(), actor, in)
	if err != nil {
		t.Fatalf("Create %q: %v", in.Title, err)
	}
	return dto.ApprovalID
}

func (e *sqliteEnv) historyCount(t *testing.T, code string) int64 {
	t.Helper()
	var n int64
	err := e.db.Model(&domain.History{}).
		Joins("JOIN approvals ON approvals.id = approval_histories.approval_id").
		Where("approvals.approval_code = ?", code).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count history: %v", err)
	}
	return n
}

// assertInvariant checks every stored approval: PENDING iff no approver and
// no decision date.
func (e *sqliteEnv) assertInvariant(t *testing.T) {
	t.Helper()
	var all []domain.Approval
	if err := e.db.Find(&all).Error; err != nil {
		t.Fatalf("load approvals: %v", err)
	}
	for i := range all {
		if err := all[i].Validate(); err != nil {
			t.Fatalf("invariant broken: %v", err)
		}
	}
}

func TestScenario_ExpenseClaimApproved(t *testing.T) {
	e := newSQLiteEnv(t, Options{DefaultCurrency: "GBP"})
	ctx := context.Background()

	code := e.create(t, e.sub, CreateInput{
		Type: "EXPENSE_CLAIM", Title: "Client lunch", Description: "Lunch with ACME", Amount: "£100.00",
	})
	if code != "APR-001" {
		t.Fatalf("code = %s, want APR-001", code)
	}

	dto, err := e.uc.Decide(ctx, e.adm, code, DecideInput{Decision: "APPROVED", Notes: strPtr("ok")})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if dto.Status != "APPROVED" || dto.ApprovedDate == nil {
		t.Fatalf("dto = %+v", dto)
	}
	if dto.Approver == nil || dto.Approver.Name != "Ada Admin" {
		t.Fatalf("approver = %+v", dto.Approver)
	}
	if *dto.Amount != "100.00" || dto.Currency != "GBP" {
		t.Fatalf("amount = %s %s", *dto.Amount, dto.Currency)
	}

	hist, err := e.uc.History(ctx, e.sub, code)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 || hist[0].Event != "CREATED" || hist[1].Event != "APPROVED" {
		t.Fatalf("history = %+v", hist)
	}
	if hist[1].Actor == nil || hist[1].Actor.Name != "Ada Admin" {
		t.Fatalf("history actor = %+v", hist[1].Actor)
	}
	var sawNotes bool
	for _, c := range hist[1].Changes.Data {
		if c.Field == "notes" && c.NewValue == "ok" {
			sawNotes = true
		}
	}
	if !sawNotes {
		t.Fatalf("notes change missing from snapshot: %+v", hist[1].Changes)
	}
	e.assertInvariant(t)
}

func TestScenario_DecideTwice(t *testing.T) {
	for _, allow := range []bool{false, true} {
		t.Run(fmt.Sprintf("allow_redecide=%v", allow), func(t *testing.T) {
			e := newSQLiteEnv(t, Options{AllowRedecide: allow})
			ctx := context.Background()
			code := e.create(t, e.sub, CreateInput{Type: "LEAVE_REQUEST", Title: "Leave", Description: "Two days"})

			if _, err := e.uc.Decide(ctx, e.adm, code, DecideInput{Decision: "APPROVED"}); err != nil {
				t.Fatalf("first decide: %v", err)
			}
			_, err := e.uc.Decide(ctx, e.adm, code, DecideInput{Decision: "REJECTED"})
			if allow {
				if err != nil {
					t.Fatalf("redecide allowed, got %v", err)
				}
				if n := e.historyCount(t, code); n != 3 {
					t.Fatalf("history rows = %d, want 3", n)
				}
			} else {
				if !errors.Is(err, domain.ErrAlreadyDecided) {
					t.Fatalf("want ErrAlreadyDecided, got %v", err)
				}
				if n := e.historyCount(t, code); n != 2 {
					t.Fatalf("history rows = %d, want 2", n)
				}
			}
			e.assertInvariant(t)
		})
	}
}

func TestScenario_ConcurrentDecisionsOnlyOneWins(t *testing.T) {
	e := newSQLiteEnv(t, Options{})
	code := e.create(t, e.sub, CreateInput{Type: "BUDGET_INCREASE", Title: "Q3 budget", Description: "More"})

	const workers = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decision := "APPROVED"
			if i%2 == 1 {
				decision = "REJECTED"
			}
			_, err := e.uc.Decide(context.Background(), e.adm, code, DecideInput{Decision: decision})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrAlreadyDecided) && !errors.Is(err, domain.ErrVersionConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
	if n := e.historyCount(t, code); n != 2 {
		t.Fatalf("history rows = %d, want 2", n)
	}
}

func TestScenario_BulkDecide(t *testing.T) {
	e := newSQLiteEnv(t, Options{})
	ctx := context.Background()

	const n = 5
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		codes = append(codes, e.create(t, e.sub, CreateInput{
			Type: "EQUIPMENT_REQUEST", Title: fmt.Sprintf("Monitor %d", i), Description: "Desk setup",
		}))
	}
	var before int64
	e.db.Model(&domain.History{}).Count(&before)

	res, err := e.uc.BulkDecide(ctx, e.adm, BulkDecideInput{ApprovalIDs: codes, Decision: "REJECTED", Notes: strPtr("budget freeze")})
	if err != nil {
		t.Fatalf("BulkDecide: %v", err)
	}
	if res.Succeeded != n || res.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}

	var after int64
	e.db.Model(&domain.History{}).Count(&after)
	if after-before != n {
		t.Fatalf("history rows appended = %d, want %d", after-before, n)
	}
	page, err := e.uc.List(ctx, e.adm, ListInput{Status: "REJECTED"})
	if err != nil || page.Total != n {
		t.Fatalf("rejected total = %d, err=%v", page.Total, err)
	}
	e.assertInvariant(t)
}

func TestScenario_FiltersNarrowMonotonically(t *testing.T) {
	e := newSQLiteEnv(t, Options{})
	ctx := context.Background()

	e.create(t, e.sub, CreateInput{Type: "EXPENSE_CLAIM", Title: "Train tickets", Description: "d", Amount: "45"})
	e.create(t, e.sub, CreateInput{Type: "EXPENSE_CLAIM", Title: "Hotel", Description: "d", Amount: "300"})
	e.create(t, e.other, CreateInput{Type: "EXPENSE_CLAIM", Title: "Train upgrade", Description: "d", Amount: "20"})
	e.create(t, e.other, CreateInput{Type: "TRAINING_REQUEST", Title: "Go course", Description: "d"})
	hotel := e.create(t, e.other, CreateInput{Type: "EXPENSE_CLAIM", Title: "Hotel upgrade", Description: "d", Amount: "80"})
	if _, err := e.uc.Decide(ctx, e.adm, hotel, DecideInput{Decision: "APPROVED"}); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	steps := []ListInput{
		{},
		{Status: "PENDING"},
		{Status: "PENDING", Type: "EXPENSE_CLAIM"},
		{Status: "PENDING", Type: "EXPENSE_CLAIM", Search: "train"},
		{Status: "PENDING", Type: "EXPENSE_CLAIM", Search: "train", Priority: "HIGH"},
	}
	wantTotals := []int64{5, 4, 3, 2, 0}
	prev := map[string]bool{}
	for i, in := range steps {
		page, err := e.uc.List(ctx, e.adm, in)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if page.Total != wantTotals[i] {
			t.Fatalf("step %d total = %d, want %d", i, page.Total, wantTotals[i])
		}
		cur := map[string]bool{}
		for _, it := range page.Items {
			if in.Status != "" && it.Status != in.Status {
				t.Fatalf("step %d returned status %s", i, it.Status)
			}
			if i > 0 && !prev[it.ApprovalID] {
				t.Fatalf("step %d returned %s absent from the wider result", i, it.ApprovalID)
			}
			cur[it.ApprovalID] = true
		}
		prev = cur
	}

	// employees only see their own
	page, err := e.uc.List(ctx, e.sub, ListInput{})
	if err != nil || page.Total != 2 {
		t.Fatalf("employee total = %d, err=%v", page.Total, err)
	}
	// search by submitter name
	page, err = e.uc.List(ctx, e.adm, ListInput{Search: "sara"})
	if err != nil || page.Total != 3 {
		t.Fatalf("search by submitter = %d, err=%v", page.Total, err)
	}
}

func TestScenario_CancelAndComments(t *testing.T) {
	e := newSQLiteEnv(t, Options{})
	ctx := context.Background()
	code := e.create(t, e.sub, CreateInput{Type: "USER_ACCESS", Title: "VPN", Description: "Remote access"})

	if _, err := e.uc.AddComment(ctx, e.other, code, "me too"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other employee comment: want ErrForbidden, got %v", err)
	}
	if _, err := e.uc.AddComment(ctx, e.adm, code, "Which network?"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := e.uc.AddComment(ctx, e.sub, code, "Office"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	comments, err := e.uc.Comments(ctx, e.sub, code)
	if err != nil || len(comments) != 2 || comments[0].Author.Name != "Ada Admin" {
		t.Fatalf("comments = %+v, err=%v", comments, err)
	}

	dto, err := e.uc.Cancel(ctx, e.sub, code, nil)
	if err != nil || dto.Status != "CANCELLED" {
		t.Fatalf("Cancel: %+v, %v", dto, err)
	}
	if _, err := e.uc.Decide(ctx, e.adm, code, DecideInput{Decision: "APPROVED"}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("decide cancelled: want ErrInvalidTransition, got %v", err)
	}

	stats, err := e.uc.Stats(ctx, e.adm)
	if err != nil || stats.Cancelled != 1 || stats.Total != 1 {
		t.Fatalf("stats = %+v, err=%v", stats, err)
	}
	e.assertInvariant(t)
}
