package repo

import (
	"bitwise74/mailverify/internal/model"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create inserts u. The unique index on email decides between two
// concurrent registrations, the loser gets ErrDuplicateEmail.
func (r *Users) Create(ctx context.Context, u *model.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, u.Email)
		if err != nil {
			return err
		}

		if taken {
			return ErrDuplicateEmail
		}

		return tx.Create(u).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}

		return fmt.Errorf("failed to create user, %w", err)
	}

	return nil
}

func (r *Users) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Users) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Users) EmailTaken(ctx context.Context, email string) (bool, error) {
	taken, err := emailTaken(r.db.WithContext(ctx), email)
	if err != nil {
		return false, fmt.Errorf("failed to check if email is registered, %w", err)
	}

	return taken, nil
}

func emailTaken(db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.Model(model.User{}).
		Where("email = ?", email).
		Count(&n).
		Error

	return n > 0, err
}

// MarkVerified flips verified and clears the code, but only if the stored
// code still equals code. Returns ErrStale when nothing matched.
func (r *Users) MarkVerified(ctx context.Context, id, code string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND verified = ? AND verification_code = ?", id, false, code).
		Updates(map[string]any{
			"verified":          true,
			"verification_code": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to verify user, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrStale
	}

	return nil
}

// ReplaceCode stores a new verification code for a user that is still
// unverified. Returns ErrStale when the user got verified in the meantime.
func (r *Users) ReplaceCode(ctx context.Context, id, code string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND verified = ?", id, false).
		Update("verification_code", code)
	if res.Error != nil {
		return fmt.Errorf("failed to replace verification code, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrStale
	}

	return nil
}

func (r *Users) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model.User{}).Count(&n).Error; err != nil {
		return 0, err
	}

	return n, nil
}

func (r *Users) first(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	return &u, nil
}
