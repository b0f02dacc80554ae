// Package services contains server-side business logic. This file implements
// UserService, which creates accounts, verifies credentials and edits
// profiles on behalf of the API and the admin site.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UserFields carries the optional attributes of a new account.
type UserFields struct {
	Name        string
	IsStaff     bool
	IsSuperuser bool
}

// ProfileUpdate is a partial update made by the account holder. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

// AdminUserUpdate replaces the attributes editable on the admin change page.
type AdminUserUpdate struct {
	Email       string
	Name        string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
}

// UserService provides account operations:
//   - CreateUser / CreateSuperuser: register accounts with hashed passwords
//   - Authenticate: verify email and password
//   - UpdateProfile / AdminUpdate: change stored attributes
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hashCost    int
	now         func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hashCost:    cfg.PasswordHashCost,
		now:         time.Now,
	}
}

// CreateUser registers an ordinary active account. The email is required and
// stored with its domain lower-cased; a clash with an existing email in any
// letter case yields common.ErrorAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, email, password string, extra UserFields) (*models.User, error) {
	email, err := cleanEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(extra.Name),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      extra.IsStaff,
		IsSuperuser:  extra.IsSuperuser,
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// CreateSuperuser registers an account with staff and superuser rights.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	return s.CreateUser(ctx, email, password, UserFields{IsStaff: true, IsSuperuser: true})
}

// Authenticate returns the active account matching email and password.
// Any mismatch yields common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnPasswordCheck(password)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !s.CheckPassword(user, password) || !user.IsActive {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// CheckPassword reports whether password matches the stored hash of user.
func (s *UserService) CheckPassword(user *models.User, password string) bool {
	if user == nil {
		return false
	}
	return auth.CheckPassword(user.PasswordHash, password)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// List returns every account, oldest first.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// UpdateProfile applies upd to the account with id and returns the result.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	var hash string
	if upd.Password != nil {
		h, err := s.hashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if upd.Email != nil {
			email, err := cleanEmail(*upd.Email)
			if err != nil {
				return err
			}
			user.Email = email
		}
		if upd.Name != nil {
			user.Name = strings.TrimSpace(*upd.Name)
		}
		if hash != "" {
			user.PasswordHash = hash
		}

		if err := repo.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return updated, nil
}

// AdminUpdate overwrites the identity and permission flags of an account.
func (s *UserService) AdminUpdate(ctx context.Context, id string, upd AdminUserUpdate) (*models.User, error) {
	email, err := cleanEmail(upd.Email)
	if err != nil {
		return nil, err
	}

	var updated *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		user.Email = email
		user.Name = strings.TrimSpace(upd.Name)
		user.IsActive = upd.IsActive
		user.IsStaff = upd.IsStaff
		user.IsSuperuser = upd.IsSuperuser

		if err := repo.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return updated, nil
}

// RecordLogin stamps the account's last login with the current time.
func (s *UserService) RecordLogin(ctx context.Context, id string) error {
	return s.repomanager.Users(s.db).SetLastLogin(ctx, id, s.now().UTC())
}

// cleanEmail normalizes email and checks that it is present and fits the
// users.email column.
func cleanEmail(email string) (string, error) {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return "", common.ErrEmailRequired
	}
	if utf8.RuneCountInString(email) > common.MaxEmailLength {
		return "", common.NewFieldError("email", fmt.Sprintf("Ensure this field has no more than %d characters.", common.MaxEmailLength))
	}
	return email, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.hashCost)
	if err != nil {
		if auth.IsPasswordTooLong(err) {
			return "", common.NewFieldError("password", "Ensure this field has no more than 72 bytes.")
		}
		return "", fmt.Errorf("%w: hashing password: %v", common.ErrorInternal, err)
	}
	return hash, nil
}
