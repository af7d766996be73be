package user

import (
	"bitwise74/mailverify/app/view"
	"bitwise74/mailverify/internal"
	"bitwise74/mailverify/internal/repo"
	"bitwise74/mailverify/internal/service"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserResendVerificationCode replaces the pending code with a new one and
// mails it. There is no limit on how often this can be called.
func UserResendVerificationCode(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	id := c.Param("id")

	_, err := d.Accounts.Resend(c.Request.Context(), id)
	switch {
	case err == nil:
		view.Redirect(c, view.VerifyPath(id), view.Flash{Notice: "New code sent to your email."})
	case errors.Is(err, repo.ErrNotFound):
		view.NotFound(c)
	case errors.Is(err, service.ErrAlreadyVerified):
		view.Redirect(c, view.LoginPath, alreadyVerified)
	case errors.Is(err, service.ErrMailFailed):
		zap.L().Error("Failed to resend verification email", zap.Error(err), zap.String("userID", id), zap.String("requestID", requestID))
		view.Redirect(c, view.VerifyPath(id), view.Flash{Alert: "We couldn't send the code. Please try again."})
	default:
		view.InternalError(c, "Failed to resend verification code", err)
	}
}
