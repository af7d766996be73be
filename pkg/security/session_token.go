package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("session token invalid")

// SessionClaims is what the session cookie carries. The session itself
// lives in a session store under SessionID.
type SessionClaims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

type SessionSigner struct {
	secret []byte
}

func NewSessionSigner(secret string) *SessionSigner {
	return &SessionSigner{secret: []byte(secret)}
}

func (s *SessionSigner) Sign(c *SessionClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":     c.SessionID,
		"user_id": c.UserID,
		"iat":     time.Now().Unix(),
		"exp":     c.ExpiresAt.Unix(),
	})

	return t.SignedString(s.secret)
}

// Parse checks the signature and expiry of tokenStr and returns its claims.
func (s *SessionSigner) Parse(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	sid, _ := claims["sid"].(string)
	userID, _ := claims["user_id"].(string)
	if sid == "" || userID == "" {
		return nil, ErrTokenInvalid
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrTokenInvalid
	}

	return &SessionClaims{
		SessionID: sid,
		UserID:    userID,
		ExpiresAt: exp.Time,
	}, nil
}
