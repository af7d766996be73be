package repo

import (
	"bitwise74/mailverify/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SessionStore keeps server side sessions keyed by a random session ID.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	// Get returns ErrNotFound for unknown or expired sessions
	Get(ctx context.Context, id string) (*model.Session, error)
	// Delete is a no-op for unknown sessions
	Delete(ctx context.Context, id string) error
}

var _ SessionStore = (*DBSessions)(nil)

type DBSessions struct {
	db *gorm.DB
}

func NewDBSessions(db *gorm.DB) *DBSessions {
	return &DBSessions{db: db}
}

func (r *DBSessions) Create(ctx context.Context, s *model.Session) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create session, %w", err)
	}

	return nil
}

func (r *DBSessions) Get(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session

	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, time.Now()).
		First(&s).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to fetch session, %w", err)
	}

	return &s, nil
}

func (r *DBSessions) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session, %w", err)
	}

	return nil
}

// DeleteExpired drops sessions past their expiry and returns how many went.
func (r *DBSessions) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&model.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions, %w", res.Error)
	}

	return res.RowsAffected, nil
}
