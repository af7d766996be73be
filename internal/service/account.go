package service

import (
	"bitwise74/mailverify/internal/model"
	"bitwise74/mailverify/internal/repo"
	"bitwise74/mailverify/pkg/security"
	"bitwise74/mailverify/pkg/validators"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrNoSession          = errors.New("no active session")
	// ErrMailFailed is returned next to a valid user: the state change went
	// through but the code didn't leave.
	ErrMailFailed = errors.New("failed to send verification mail")
)

// ValidationError carries every field that failed registration.
type ValidationError struct {
	Fields validators.Errors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields.Full(), ", ")
}

type AccountsOpts struct {
	Users      *repo.Users
	Sessions   repo.SessionStore
	Argon      *security.ArgonHash
	Signer     *security.SessionSigner
	Mailer     Mailer
	SessionTTL time.Duration
	// Defaults to GenerateCode
	Codes func() (string, error)
}

// Accounts implements registration, email verification and login sessions.
type Accounts struct {
	users      *repo.Users
	sessions   repo.SessionStore
	argon      *security.ArgonHash
	signer     *security.SessionSigner
	mailer     Mailer
	sessionTTL time.Duration
	codes      func() (string, error)
}

func NewAccounts(o *AccountsOpts) *Accounts {
	codes := o.Codes
	if codes == nil {
		codes = GenerateCode
	}

	return &Accounts{
		users:      o.Users,
		sessions:   o.Sessions,
		argon:      o.Argon,
		signer:     o.Signer,
		mailer:     o.Mailer,
		sessionTTL: o.SessionTTL,
		codes:      codes,
	}
}

// Register validates r, stores a new unverified user with a fresh code and
// mails the code. A *ValidationError means nothing was written.
func (a *Accounts) Register(ctx context.Context, r validators.Registration) (*model.User, error) {
	r = r.Normalize()

	errs := validators.ValidateRegistration(r)
	if errs.Empty() {
		taken, err := a.users.EmailTaken(ctx, r.Email)
		if err != nil {
			return nil, err
		}

		if taken {
			errs.Add("email", validators.ErrEmailAlreadyTaken)
		}
	}

	if !errs.Empty() {
		return nil, &ValidationError{Fields: errs}
	}

	digest, err := a.argon.GenerateFromPassword(r.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	code, err := a.codes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code, %w", err)
	}

	u := &model.User{
		ID:               userID,
		Name:             r.Name,
		Email:            r.Email,
		PasswordDigest:   digest,
		VerificationCode: &code,
		Verified:         false,
	}

	if err := a.users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			errs.Add("email", validators.ErrEmailAlreadyTaken)
			return nil, &ValidationError{Fields: errs}
		}

		return nil, err
	}

	if err := a.mailer.SendVerificationCode(ctx, u); err != nil {
		return u, fmt.Errorf("%w, %w", ErrMailFailed, err)
	}

	return u, nil
}

// User loads a user for display. Returns repo.ErrNotFound for unknown IDs.
func (a *Accounts) User(ctx context.Context, id string) (*model.User, error) {
	return a.users.ByID(ctx, id)
}

// Confirm verifies the account when code equals the stored code exactly.
// The compare and the write happen in one conditional update so a resend
// racing with a confirm can't be overwritten.
func (a *Accounts) Confirm(ctx context.Context, id, code string) (*model.User, error) {
	u, err := a.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Verified {
		return u, ErrAlreadyVerified
	}

	err = a.users.MarkVerified(ctx, id, code)
	if err == nil {
		u.Verified = true
		u.VerificationCode = nil
		return u, nil
	}

	if !errors.Is(err, repo.ErrStale) {
		return nil, err
	}

	// Either the code was wrong or someone verified concurrently
	u, err = a.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Verified {
		return u, ErrAlreadyVerified
	}

	return u, ErrInvalidCode
}

// Resend replaces the code of an unverified user with a new one and mails it.
func (a *Accounts) Resend(ctx context.Context, id string) (*model.User, error) {
	u, err := a.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Verified {
		return u, ErrAlreadyVerified
	}

	code, err := codeOtherThan(a.codes, u.VerificationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code, %w", err)
	}

	if err := a.users.ReplaceCode(ctx, id, code); err != nil {
		if errors.Is(err, repo.ErrStale) {
			return u, ErrAlreadyVerified
		}

		return nil, err
	}

	u.VerificationCode = &code

	if err := a.mailer.SendVerificationCode(ctx, u); err != nil {
		return u, fmt.Errorf("%w, %w", ErrMailFailed, err)
	}

	return u, nil
}

type Login struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Login checks the credentials and opens a session for verified accounts.
// Unknown emails and wrong passwords both end in ErrInvalidCredentials. On
// ErrNotVerified the returned Login only carries the user.
func (a *Accounts) Login(ctx context.Context, email, password string) (*Login, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		a.argon.BurnVerify(password)
		return nil, ErrInvalidCredentials
	}

	u, err := a.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			a.argon.BurnVerify(password)
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	ok, err := a.argon.VerifyPasswd(password, u.PasswordDigest)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !u.Verified {
		return &Login{User: u}, ErrNotVerified
	}

	now := time.Now()
	s := &model.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.sessionTTL),
	}

	if err := a.sessions.Create(ctx, s); err != nil {
		return nil, err
	}

	token, err := a.signer.Sign(&security.SessionClaims{
		SessionID: s.ID,
		UserID:    u.ID,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token, %w", err)
	}

	return &Login{User: u, Token: token, ExpiresAt: s.ExpiresAt}, nil
}

// Authenticate resolves a session cookie to its live session.
func (a *Accounts) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	claims, err := a.signer.Parse(token)
	if err != nil {
		return nil, ErrNoSession
	}

	s, err := a.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoSession
		}

		return nil, err
	}

	if s.UserID != claims.UserID {
		zap.L().Warn("Session token user doesn't match stored session", zap.String("sessionID", s.ID))
		return nil, ErrNoSession
	}

	return s, nil
}

// Logout destroys the session behind token. Missing, malformed or already
// destroyed sessions are not an error.
func (a *Accounts) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := a.signer.Parse(token)
	if err != nil {
		return nil
	}

	return a.sessions.Delete(ctx, claims.SessionID)
}
