package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/security"
)

// Service exposes the account operations available to an authenticated caller.
type Service interface {
	Me(ctx context.Context, caller pkgauth.Caller) (*UserDTO, error)
	Update(ctx context.Context, username string, caller pkgauth.Caller, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, userID uuid.UUID, caller pkgauth.Caller) error
	ResolveCaller(ctx context.Context, subject string) (pkgauth.Caller, error)
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type service struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Me(ctx context.Context, caller pkgauth.Caller) (*UserDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := NewRepository(s.db.DB()).FindByID(ctx, caller.ID)
	if err != nil {
		return nil, classifyLookup(err)
	}
	return FromModel(user), nil
}

// ResolveCaller maps a verified token subject (the user id) onto a live
// account. Tokens of a deleted account stay dead even if the username is
// registered again.
func (s *service) ResolveCaller(ctx context.Context, subject string) (pkgauth.Caller, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return pkgauth.Caller{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	user, err := NewRepository(s.db.DB()).FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgauth.Caller{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
		}
		return pkgauth.Caller{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup caller")
	}
	return pkgauth.Caller{ID: user.ID, Username: user.Username}, nil
}

func (s *service) Update(ctx context.Context, username string, caller pkgauth.Caller, req UpdateUserRequest) (*UserDTO, error) {
	if caller.Username == "" || caller.Username != username {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot modify another user")
	}

	cols, err := s.updateColumns(req)
	if err != nil {
		return nil, err
	}

	var updated *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		user, err := repo.FindByUsername(ctx, username)
		if err != nil {
			return classifyLookup(err)
		}

		if email, ok := cols["email"].(string); ok && email != user.Email {
			if _, err := repo.FindByEmail(ctx, email); err == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			} else if !db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
			}
		}

		if err := repo.Update(ctx, user.ID, cols); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
		}

		reloaded, err := repo.FindByID(ctx, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
		}
		if !reflects(reloaded, cols) {
			return pkgerrors.New(pkgerrors.CodeInternal, "user update was not applied")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID, caller pkgauth.Caller) error {
	if caller.ID == uuid.Nil || caller.ID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete another user")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Delete(ctx, userID); err != nil {
			return classifyLookup(err)
		}
		return nil
	})
}

// updateColumns translates the whitelisted patch fields into a column map.
func (s *service) updateColumns(req UpdateUserRequest) (map[string]any, error) {
	cols := map[string]any{}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		cols["email"] = email
	}
	if req.FirstName != nil {
		cols["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		cols["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
		}
		cols["password_hash"] = hash
	}
	return cols, nil
}

func reflects(u *models.User, cols map[string]any) bool {
	for col, want := range cols {
		var got string
		switch col {
		case "email":
			got = u.Email
		case "first_name":
			got = u.FirstName
		case "last_name":
			got = u.LastName
		case "password_hash":
			got = u.PasswordHash
		default:
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func classifyLookup(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
}
