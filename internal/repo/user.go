package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/salonsys/salon-admin/internal/apperr"
	"github.com/salonsys/salon-admin/internal/hash"
	"github.com/salonsys/salon-admin/internal/models"
)

type NewUser struct {
	Username string
	Email    string
	FullName string
	Password string
}

// UserFlags carries the administrative toggles; nil fields stay untouched.
type UserFlags struct {
	IsActive *bool `json:"is_active"`
	IsAdmin  *bool `json:"is_admin"`
}

func (r *Repo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var u models.User
	if err := r.DB.WithContext(qctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.Unavailable, "user lookup failed", err)
	}
	return &u, nil
}

// FindUserByUsername is case-sensitive.
func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var u models.User
	if err := r.DB.WithContext(qctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.Unavailable, "user lookup failed", err)
	}
	return &u, nil
}

// FindUserByEmail is case-insensitive: emails are stored lowercased and the
// argument is lowercased before matching.
func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var u models.User
	if err := r.DB.WithContext(qctx).Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.Unavailable, "user lookup failed", err)
	}
	return &u, nil
}

// CreateUser registers an account. Username is checked before email, so a
// double conflict reports the username. The duplicate check and the insert
// run in one transaction and the unique constraints backstop the remaining
// race: a concurrent insert surfaces as Duplicate, not as a raw driver error.
// The first account ever created becomes admin; every later account starts
// as a regular user regardless of what the caller asked for.
func (r *Repo) CreateUser(ctx context.Context, nu NewUser) (*models.User, error) {
	pwHash, err := hash.HashPassword(nu.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Invalid, "invalid password", err)
	}

	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	email := strings.ToLower(nu.Email)
	var created models.User

	txErr := r.DB.WithContext(qctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", nu.Username).First(&existing).Error
		if err == nil {
			return apperr.E(apperr.Duplicate, "username already in use")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("email = ?", email).First(&existing).Error
		if err == nil {
			return apperr.E(apperr.Duplicate, "email already in use")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var total int64
		if err := tx.Model(&models.User{}).Count(&total).Error; err != nil {
			return err
		}

		created = models.User{
			Username:     nu.Username,
			Email:        email,
			FullName:     nu.FullName,
			PasswordHash: pwHash,
			IsActive:     true,
			IsAdmin:      total == 0,
		}
		if err := tx.Create(&created).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.E(apperr.Duplicate, "username or email already in use")
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		if apperr.KindOf(txErr) != apperr.Internal {
			return nil, txErr
		}
		return nil, apperr.Wrap(apperr.Unavailable, "user create failed", txErr)
	}
	return &created, nil
}

// Authenticate resolves the canonical identifier (email), verifies the
// password and rejects inactive accounts. Unknown identity, wrong password
// and inactive account collapse into one Unauthenticated result so callers
// cannot probe for account existence.
func (r *Repo) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := r.FindUserByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.E(apperr.Unauthenticated, "incorrect email or password")
		}
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.E(apperr.Unauthenticated, "incorrect email or password")
	}
	if !u.IsActive {
		return nil, apperr.E(apperr.Unauthenticated, "incorrect email or password")
	}
	return u, nil
}

func (r *Repo) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var users []models.User
	err := r.DB.WithContext(qctx).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "user list failed", err)
	}
	return users, nil
}

// UpdateUserFlags applies active/admin toggles. Accounts are never
// hard-deleted; deactivation is the administrative off switch.
func (r *Repo) UpdateUserFlags(ctx context.Context, id uint, f UserFlags) (*models.User, error) {
	u, err := r.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.IsActive != nil {
		u.IsActive = *f.IsActive
	}
	if f.IsAdmin != nil {
		u.IsAdmin = *f.IsAdmin
	}

	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	if err := r.DB.WithContext(qctx).Model(u).Select("is_active", "is_admin").Updates(map[string]any{
		"is_active": u.IsActive,
		"is_admin":  u.IsAdmin,
	}).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "user update failed", err)
	}
	return u, nil
}
