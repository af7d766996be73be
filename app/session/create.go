package session

import (
	"bitwise74/mailverify/app/view"
	"bitwise74/mailverify/internal"
	"bitwise74/mailverify/internal/service"
	"bitwise74/mailverify/pkg/middleware"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCreate logs a user in. Unknown emails and wrong passwords get the
// same response.
func SessionCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		view.BadRequest(c)
		return
	}

	l, err := d.Accounts.Login(c.Request.Context(), data.Email, data.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		view.Render(c, http.StatusUnprocessableEntity, "sessions_new.html", gin.H{
			"title": "Log in",
			"form":  loginBody{Email: data.Email},
			"alert": "Invalid email or password",
		})
		return
	case errors.Is(err, service.ErrNotVerified):
		view.Redirect(c, view.VerifyPath(l.User.ID), view.Flash{Alert: "Verify your account first!"})
		return
	default:
		view.InternalError(c, "Failed to log in user", err)
		return
	}

	// Drop whatever session this browser had before
	if old, err := c.Cookie(middleware.SessionCookie); err == nil && old != "" {
		if err := d.Accounts.Logout(c.Request.Context(), old); err != nil {
			zap.L().Warn("Failed to destroy previous session", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	middleware.SetSessionCookie(c, l.Token, l.ExpiresAt)

	zap.L().Info("User logged in", zap.String("userID", l.User.ID), zap.String("requestID", requestID))
	view.Redirect(c, view.UserPath(l.User.ID), view.Flash{Notice: "Logged in successfully!"})
}
