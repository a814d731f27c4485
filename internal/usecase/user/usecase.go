package user

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"hr-admin-backend/internal/auth"
	domain "hr-admin-backend/internal/domain/user"
	"hr-admin-backend/internal/domain/validation"
	"hr-admin-backend/pkg/id"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type TokenIssuer interface {
	Issue(p auth.Principal) (string, time.Time, error)
}

type Usecase struct {
	repo   domain.Repository
	tokens TokenIssuer
	cost   int
}

func NewUsecase(r domain.Repository, tokens TokenIssuer) *Usecase {
	return &Usecase{repo: r, tokens: tokens, cost: bcrypt.DefaultCost}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*UserDTO, error) {
	var verr validation.Error
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	role := domain.Role(strings.ToUpper(strings.TrimSpace(in.Role)))
	if name == "" {
		verr.Add("name", "is required")
	}
	if !strings.Contains(email, "@") {
		verr.Add("email", "must be a valid email address")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		verr.Add("password", "must be at least 8 characters")
	}
	if !role.Valid() {
		verr.Add("role", "must be one of SUPERADMIN ADMIN EMPLOYEE")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	_, err := u.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrNotFound):
		return nil, errors.Wrap(err, "user: lookup email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		return nil, errors.Wrap(err, "user: hash password")
	}
	usr := &domain.User{
		UserID:       id.NewID32(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := u.repo.Create(ctx, usr); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, errors.Wrap(err, "user: create")
	}
	log.WithFields(log.Fields{"user_id": usr.UserID, "role": usr.Role}).Info("user created")
	dto := toDTO(usr)
	return &dto, nil
}

func (u *Usecase) Get(ctx context.Context, userID string) (*UserDTO, error) {
	usr, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(usr)
	return &dto, nil
}

func (u *Usecase) List(ctx context.Context) ([]UserDTO, error) {
	users, err := u.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "user: list")
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, toDTO(&users[i]))
	}
	return out, nil
}

// Login checks credentials and issues a bearer token. Unknown email and wrong
// password are indistinguishable to the caller.
func (u *Usecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	usr, err := u.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "user: lookup email")
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !usr.Active {
		return nil, domain.ErrInactive
	}

	token, exp, err := u.tokens.Issue(auth.Principal{
		ID:     usr.ID,
		UserID: usr.UserID,
		Name:   usr.Name,
		Role:   usr.Role,
	})
	if err != nil {
		return nil, errors.Wrap(err, "user: issue token")
	}
	return &LoginResult{Token: token, TokenType: "Bearer", ExpiresAt: exp, User: toDTO(usr)}, nil
}

// EnsureSuperAdmin creates a SUPERADMIN with the given credentials unless the
// email is already registered. It reports whether a user was created.
func (u *Usecase) EnsureSuperAdmin(ctx context.Context, email, password, name string) (bool, error) {
	_, err := u.repo.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, errors.Wrap(err, "user: lookup bootstrap admin")
	}
	_, err = u.Create(ctx, CreateInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(domain.RoleSuperAdmin),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
