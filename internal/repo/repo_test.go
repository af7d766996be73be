package repo

import (
	"bitwise74/mailverify/db/dbtest"
	"bitwise74/mailverify/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	return dbtest.Open(t)
}

func newUser(id, email, code string) *model.User {
	return &model.User{
		ID:               id,
		Name:             "Ana",
		Email:            email,
		PasswordDigest:   "digest",
		VerificationCode: &code,
	}
}

func TestUsersCreateAndFetch(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newDB(t))

	require.NoError(t, users.Create(ctx, newUser("u1", "ana@x.com", "123456")))

	u, err := users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", u.Email)
	assert.False(t, u.Verified)
	require.NotNil(t, u.VerificationCode)
	assert.Equal(t, "123456", *u.VerificationCode)

	u, err = users.ByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = users.ByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.ByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	d := newDB(t)
	users := NewUsers(d)

	require.NoError(t, users.Create(ctx, newUser("u1", "dup@x.com", "123456")))
	assert.ErrorIs(t, users.Create(ctx, newUser("u2", "dup@x.com", "654321")), ErrDuplicateEmail)

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	taken, err := users.EmailTaken(ctx, "dup@x.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUsersUniqueIndexTranslated(t *testing.T) {
	// Skips the pre-check to hit the constraint directly
	d := newDB(t)

	require.NoError(t, d.Create(newUser("u1", "dup@x.com", "123456")).Error)
	err := d.Create(newUser("u2", "dup@x.com", "123456")).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUsersMarkVerified(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newDB(t))
	require.NoError(t, users.Create(ctx, newUser("u1", "ana@x.com", "123456")))

	assert.ErrorIs(t, users.MarkVerified(ctx, "u1", "000000"), ErrStale)

	u, err := users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, u.Verified)

	require.NoError(t, users.MarkVerified(ctx, "u1", "123456"))

	u, err = users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.Verified)
	assert.Nil(t, u.VerificationCode)

	// Second confirm with the same code finds nothing to update
	assert.ErrorIs(t, users.MarkVerified(ctx, "u1", "123456"), ErrStale)
}

func TestUsersReplaceCode(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newDB(t))
	require.NoError(t, users.Create(ctx, newUser("u1", "ana@x.com", "123456")))

	require.NoError(t, users.ReplaceCode(ctx, "u1", "654321"))
	assert.ErrorIs(t, users.MarkVerified(ctx, "u1", "123456"), ErrStale)
	require.NoError(t, users.MarkVerified(ctx, "u1", "654321"))

	assert.ErrorIs(t, users.ReplaceCode(ctx, "u1", "111111"), ErrStale)

	u, err := users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, u.VerificationCode)
}

func TestDBSessions(t *testing.T) {
	ctx := context.Background()
	d := newDB(t)
	require.NoError(t, NewUsers(d).Create(ctx, newUser("u1", "ana@x.com", "123456")))

	sessions := NewDBSessions(d)
	now := time.Now()

	require.NoError(t, sessions.Create(ctx, &model.Session{ID: "live", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, sessions.Create(ctx, &model.Session{ID: "old", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(-time.Hour)}))

	s, err := sessions.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)

	_, err = sessions.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := sessions.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, sessions.Delete(ctx, "live"))
	_, err = sessions.Get(ctx, "live")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine
	require.NoError(t, sessions.Delete(ctx, "live"))
}
