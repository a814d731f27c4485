package user

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactive           = errors.New("user is inactive")
)

type Role string

const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleEmployee   Role = "EMPLOYEE"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// IsApprover reports whether the role may decide approvals.
func (r Role) IsApprover() bool { return r == RoleSuperAdmin || r == RoleAdmin }

// Table: users
type User struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	UserID       string         `gorm:"column:user_id;size:32;not null;uniqueIndex:ux_users_user_id"`
	Name         string         `gorm:"column:name;size:120;not null"`
	Email        string         `gorm:"column:email;size:190;not null;uniqueIndex:ux_users_email"`
	PasswordHash string         `gorm:"column:password_hash;size:255;not null"`
	Role         Role           `gorm:"column:role;size:16;not null;index"`
	Active       bool           `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (User) TableName() string { return "users" }
