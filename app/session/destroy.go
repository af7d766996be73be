package session

import (
	"bitwise74/mailverify/app/view"
	"bitwise74/mailverify/internal"
	"bitwise74/mailverify/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionDestroy logs out. It always succeeds, with or without a session.
func SessionDestroy(c *gin.Context, d *internal.Deps) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil {
		if err := d.Accounts.Logout(c.Request.Context(), token); err != nil {
			zap.L().Error("Failed to delete session", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
		}
	}

	middleware.ClearSessionCookie(c)
	view.Redirect(c, view.LoginPath, view.Flash{Notice: "You have been logged out!"})
}
