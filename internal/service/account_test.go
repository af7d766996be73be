package service

import (
	"bitwise74/mailverify/db/dbtest"
	"bitwise74/mailverify/internal/model"
	"bitwise74/mailverify/internal/repo"
	"bitwise74/mailverify/internal/service/servicetest"
	"bitwise74/mailverify/pkg/security"
	"bitwise74/mailverify/pkg/validators"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	accounts *Accounts
	users    *repo.Users
	mailer   *servicetest.MockMailer
	// Codes in the order they were mailed
	sent []string
}

func newFixture(t *testing.T, mailErr error) *fixture {
	t.Helper()

	d := dbtest.Open(t)

	f := &fixture{
		users:  repo.NewUsers(d),
		mailer: new(servicetest.MockMailer),
	}

	f.mailer.On("SendVerificationCode", mock.Anything, mock.Anything).
		Return(mailErr).
		Run(func(args mock.Arguments) {
			u := args.Get(1).(*model.User)
			f.sent = append(f.sent, *u.VerificationCode)
		})

	f.accounts = NewAccounts(&AccountsOpts{
		Users:      f.users,
		Sessions:   repo.NewDBSessions(d),
		Argon:      security.NewWithParams(1024, 1, 1),
		Signer:     security.NewSessionSigner("test-secret"),
		Mailer:     f.mailer,
		SessionTTL: time.Hour,
	})

	return f
}

func registration(name, email string) validators.Registration {
	return validators.Registration{
		Name:                 name,
		Email:                email,
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	u, err := f.accounts.Register(ctx, registration("Ana", "ana@x.com"))
	require.NoError(t, err)

	stored, err := f.users.ByID(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ana", stored.Name)
	assert.False(t, stored.Verified)
	require.NotNil(t, stored.VerificationCode)
	assert.Regexp(t, `^[0-9]{6}$`, *stored.VerificationCode)
	assert.True(t, strings.HasPrefix(stored.PasswordDigest, "$argon2id$"))
	assert.NotContains(t, stored.PasswordDigest, "secret123")

	require.Len(t, f.sent, 1)
	assert.Equal(t, *stored.VerificationCode, f.sent[0])
	f.mailer.AssertNumberOfCalls(t, "SendVerificationCode", 1)
}

func TestRegisterAcceptsShortPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	u, err := f.accounts.Register(ctx, validators.Registration{
		Name:                 "Bo",
		Email:                "bo@x.com",
		Password:             "abc",
		PasswordConfirmation: "abc",
	})
	require.NoError(t, err)
	assert.False(t, u.Verified)
	require.Len(t, f.sent, 1)
	assert.Regexp(t, `^[0-9]{6}$`, f.sent[0])

	_, err = f.accounts.Confirm(ctx, u.ID, f.sent[0])
	require.NoError(t, err)

	l, err := f.accounts.Login(ctx, "bo@x.com", "abc")
	require.NoError(t, err)
	assert.NotEmpty(t, l.Token)
}

func TestRegisterValidationHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.accounts.Register(ctx, validators.Registration{
		Name:                 "",
		Email:                "not-an-email",
		Password:             "secret123",
		PasswordConfirmation: "different1",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"email", "name", "password_confirmation"}, verr.Fields.Fields())

	n, err := f.users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	f.mailer.AssertNotCalled(t, "SendVerificationCode", mock.Anything, mock.Anything)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.accounts.Register(ctx, registration("First", "dup@x.com"))
	require.NoError(t, err)

	_, err = f.accounts.Register(ctx, registration("Second", "dup@x.com"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{validators.ErrEmailAlreadyTaken.Error()}, verr.Fields["email"])

	n, err := f.users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	f.mailer.AssertNumberOfCalls(t, "SendVerificationCode", 1)
}

func TestRegisterMailFailureKeepsUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, errors.New("smtp down"))

	u, err := f.accounts.Register(ctx, registration("Ana", "ana@x.com"))
	assert.ErrorIs(t, err, ErrMailFailed)
	require.NotNil(t, u)

	_, err = f.users.ByID(ctx, u.ID)
	assert.NoError(t, err)
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	u, err := f.accounts.Register(ctx, registration("Ana", "ana@x.com"))
	require.NoError(t, err)
	code := f.sent[0]

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for _, bad := range []string{wrong, "", " " + code, code + " "} {
		_, err = f.accounts.Confirm(ctx, u.ID, bad)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", bad)
	}

	stored, err := f.users.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.Verified)
	require.NotNil(t, stored.VerificationCode)
	assert.Equal(t, code, *stored.VerificationCode)

	verified, err := f.accounts.Confirm(ctx, u.ID, code)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Nil(t, verified.VerificationCode)

	stored, err = f.users.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Verified)
	assert.Nil(t, stored.VerificationCode)

	_, err = f.accounts.Confirm(ctx, u.ID, code)
	assert.ErrorIs(t, err, ErrAlreadyVerified)

	_, err = f.accounts.Confirm(ctx, "missing", code)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestResend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	u, err := f.accounts.Register(ctx, registration("Ana", "ana@x.com"))
	require.NoError(t, err)
	c1 := f.sent[0]

	_, err = f.accounts.Resend(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, f.sent, 2)
	c2 := f.sent[1]

	assert.NotEqual(t, c1, c2)
	assert.Regexp(t, `^[0-9]{6}$`, c2)

	_, err = f.accounts.Confirm(ctx, u.ID, c1)
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = f.accounts.Confirm(ctx, u.ID, c2)
	require.NoError(t, err)

	_, err = f.accounts.Resend(ctx, u.ID)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	assert.Len(t, f.sent, 2)

	stored, err := f.users.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.VerificationCode)

	_, err = f.accounts.Resend(ctx, "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestResendMailFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, errors.New("smtp down"))

	u, err := f.accounts.Register(ctx, registration("Ana", "ana@x.com"))
	require.ErrorIs(t, err, ErrMailFailed)

	_, err = f.accounts.Resend(ctx, u.ID)
	assert.ErrorIs(t, err, ErrMailFailed)

	// The new code is stored even though it never left
	stored, err := f.users.ByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, f.sent, 2)
	assert.Equal(t, f.sent[1], *stored.VerificationCode)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	u, err := f.accounts.Register(ctx, registration("Ana", "ana@x.com"))
	require.NoError(t, err)

	t.Run("bad credentials look the same", func(t *testing.T) {
		for _, c := range [][2]string{
			{"ana@x.com", "wrong-password"},
			{"nobody@x.com", "secret123"},
			{"", "secret123"},
			{"ana@x.com", ""},
		} {
			l, err := f.accounts.Login(ctx, c[0], c[1])
			assert.Nil(t, l)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		}
	})

	t.Run("unverified gets no session", func(t *testing.T) {
		l, err := f.accounts.Login(ctx, "ana@x.com", "secret123")
		assert.ErrorIs(t, err, ErrNotVerified)
		require.NotNil(t, l)
		assert.Equal(t, u.ID, l.User.ID)
		assert.Empty(t, l.Token)
	})

	_, err = f.accounts.Confirm(ctx, u.ID, f.sent[0])
	require.NoError(t, err)

	t.Run("verified gets a session", func(t *testing.T) {
		l, err := f.accounts.Login(ctx, " ana@x.com ", "secret123")
		require.NoError(t, err)
		require.NotEmpty(t, l.Token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), l.ExpiresAt, time.Minute)

		s, err := f.accounts.Authenticate(ctx, l.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, s.UserID)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	u, err := f.accounts.Register(ctx, registration("Ana", "ana@x.com"))
	require.NoError(t, err)
	_, err = f.accounts.Confirm(ctx, u.ID, f.sent[0])
	require.NoError(t, err)

	l, err := f.accounts.Login(ctx, "ana@x.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.accounts.Logout(ctx, l.Token))

	_, err = f.accounts.Authenticate(ctx, l.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	// Idempotent, with or without a session
	assert.NoError(t, f.accounts.Logout(ctx, l.Token))
	assert.NoError(t, f.accounts.Logout(ctx, ""))
	assert.NoError(t, f.accounts.Logout(ctx, "garbage"))
}

func TestAuthenticateRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.accounts.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.accounts.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrNoSession)

	// Correctly signed but never stored
	tok, err := security.NewSessionSigner("test-secret").Sign(&security.SessionClaims{
		SessionID: "nope",
		UserID:    "nope",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = f.accounts.Authenticate(ctx, tok)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerificationScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	u, err := f.accounts.Register(ctx, registration("Ana", "ana@x.com"))
	require.NoError(t, err)
	assert.False(t, u.Verified)
	c1 := f.sent[0]

	_, err = f.accounts.Login(ctx, "ana@x.com", "secret123")
	require.ErrorIs(t, err, ErrNotVerified)

	u, err = f.accounts.Confirm(ctx, u.ID, c1)
	require.NoError(t, err)
	assert.True(t, u.Verified)

	l, err := f.accounts.Login(ctx, "ana@x.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.accounts.Logout(ctx, l.Token))
	_, err = f.accounts.Authenticate(ctx, l.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}
