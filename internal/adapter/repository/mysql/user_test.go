package mysql

import (
	"context"
	"errors"
	"testing"

	userDomain "hr-admin-backend/internal/domain/user"
	"hr-admin-backend/internal/testutil/sqlitedb"
)

func TestUser_CreateAndLookup(t *testing.T) {
	db := sqlitedb.Open(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &userDomain.User{
		UserID:       "0123456789abcdef0123456789abcdef",
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Role:         userDomain.RoleAdmin,
		Active:       true,
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "  ADA@example.com ")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetByEmail: %+v, %v", got, err)
	}
	got, err = repo.GetByUserID(ctx, u.UserID)
	if err != nil || got.Name != "Ada Lovelace" {
		t.Fatalf("GetByUserID: %+v, %v", got, err)
	}

	dup := *u
	dup.ID = 0
	dup.UserID = "ffffffffffffffffffffffffffffffff"
	if err := repo.Create(ctx, &dup); !errors.Is(err, userDomain.ErrEmailTaken) {
		t.Fatalf("duplicate email: want ErrEmailTaken, got %v", err)
	}

	if _, err := repo.GetByUserID(ctx, "missing"); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUser_ListOrderedByName(t *testing.T) {
	db := sqlitedb.Open(t)
	sqlitedb.SeedUser(t, db, "Zed", userDomain.RoleEmployee)
	sqlitedb.SeedUser(t, db, "Amy", userDomain.RoleAdmin)

	got, err := NewUserRepository(db).List(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("List: %d, %v", len(got), err)
	}
	if got[0].Name != "Amy" || got[1].Name != "Zed" {
		t.Fatalf("order = %s, %s", got[0].Name, got[1].Name)
	}
}
