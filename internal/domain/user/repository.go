package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	// GetByUserID looks up by public user_id. Returns ErrNotFound when absent.
	GetByUserID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
}
