package user

import (
	"bitwise74/mailverify/app/view"
	"bitwise74/mailverify/internal"
	"bitwise74/mailverify/internal/repo"
	"bitwise74/mailverify/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var alreadyVerified = view.Flash{Notice: "Your account is already verified. Log in."}

// UserVerify renders the code entry form
func UserVerify(c *gin.Context, d *internal.Deps) {
	u, err := d.Accounts.User(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			view.NotFound(c)
			return
		}

		view.InternalError(c, "Failed to fetch user", err)
		return
	}

	view.Render(c, http.StatusOK, "users_verify.html", gin.H{
		"title": "Verify your account",
		"user":  u,
	})
}

// UserConfirmVerification checks the submitted code. The code has to match
// the stored one exactly, surrounding whitespace included.
func UserConfirmVerification(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	code := c.PostForm("verification_code")

	u, err := d.Accounts.Confirm(c.Request.Context(), c.Param("id"), code)
	switch {
	case err == nil:
		zap.L().Info("User verified", zap.String("userID", u.ID), zap.String("requestID", requestID))
		view.Redirect(c, view.LoginPath, view.Flash{Notice: "Account verified! Log in."})
	case errors.Is(err, repo.ErrNotFound):
		view.NotFound(c)
	case errors.Is(err, service.ErrAlreadyVerified):
		view.Redirect(c, view.LoginPath, alreadyVerified)
	case errors.Is(err, service.ErrInvalidCode):
		view.Render(c, http.StatusUnprocessableEntity, "users_verify.html", gin.H{
			"title": "Verify your account",
			"user":  u,
			"alert": "Code invalid!",
		})
	default:
		view.InternalError(c, "Failed to confirm verification code", err)
	}
}
