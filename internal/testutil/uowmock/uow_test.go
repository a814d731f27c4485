package uowmock

import (
	"context"
	"errors"
	"testing"

	"hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/uow"
	"hr-admin-backend/internal/testutil/approvalmock"
	"hr-admin-backend/internal/testutil/usermock"
)

func TestUoW_WithinTx_ForwardsRepos(t *testing.T) {
	ctx := context.Background()
	users := &usermock.Repo{}
	apprs := &approvalmock.Repo{}
	repos := uow.Repos{Users: users, Approvals: apprs}

	m := New().WithWithinTx(func(gotCtx context.Context, fn func(uow.Repos) error) error {
		if gotCtx != ctx {
			t.Fatalf("ctx mismatch")
		}
		return fn(repos)
	})

	called := false
	err := m.WithinTx(ctx, func(r uow.Repos) error {
		called = true
		if r.Users != users || r.Approvals != apprs {
			t.Fatalf("repos not forwarded")
		}
		return nil
	})
	if err != nil || !called {
		t.Fatalf("WithinTx: err=%v called=%v", err, called)
	}
}

func TestUoW_Defaults_Unimplemented(t *testing.T) {
	m := New()
	ctx := context.Background()
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: %v", err)
	}
	err := m.WithinApprovalTx(ctx, "APR-001", func(uow.Repos, *approval.Approval) error { return nil })
	if !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinApprovalTx default: %v", err)
	}
}

func TestPassthrough_LocksThenCalls(t *testing.T) {
	locked := &approval.Approval{ID: 7, ApprovalCode: "APR-007"}
	apprs := &approvalmock.Repo{
		GetByCodeForUpdateFn: func(_ context.Context, code string) (*approval.Approval, error) {
			if code != "APR-007" {
				return nil, approval.ErrNotFound
			}
			return locked, nil
		},
	}
	m := Passthrough(uow.Repos{Approvals: apprs})

	var got *approval.Approval
	err := m.WithinApprovalTx(context.Background(), "APR-007", func(_ uow.Repos, a *approval.Approval) error {
		got = a
		return nil
	})
	if err != nil || got != locked {
		t.Fatalf("WithinApprovalTx: got %+v, %v", got, err)
	}

	err = m.WithinApprovalTx(context.Background(), "APR-999", func(uow.Repos, *approval.Approval) error {
		t.Fatal("body must not run when lock fails")
		return nil
	})
	if !errors.Is(err, approval.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUoW_Reset(t *testing.T) {
	m := Passthrough(uow.Repos{})
	m.Reset()
	if m.WithinTxFn != nil || m.WithinApprovalTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
