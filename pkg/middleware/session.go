package middleware

import (
	"bitwise74/mailverify/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const SessionCookie = "session"

// NewSessionMiddleware resolves the session cookie and sets userID and
// sessionID on the context. Requests without a valid session pass through
// untouched apart from a stale cookie being cleared.
func NewSessionMiddleware(a *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		s, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrNoSession) {
				zap.L().Error("Failed to load session", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
			} else {
				ClearSessionCookie(c)
			}

			c.Next()
			return
		}

		c.Set("userID", s.UserID)
		c.Set("sessionID", s.ID)
		c.Next()
	}
}

func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(time.Until(expiresAt).Seconds()), "/", "", c.GetBool("secureCookies"), true)
}

func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", c.GetBool("secureCookies"), true)
}
