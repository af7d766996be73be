package user

import (
	"bitwise74/mailverify/app/view"
	"bitwise74/mailverify/internal"
	"bitwise74/mailverify/internal/service"
	"bitwise74/mailverify/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		view.BadRequest(c)
		return
	}

	u, err := d.Accounts.Register(c.Request.Context(), validators.Registration{
		Name:                 data.Name,
		Email:                data.Email,
		Password:             data.Password,
		PasswordConfirmation: data.PasswordConfirmation,
	})
	if err != nil {
		var verr *service.ValidationError

		switch {
		case errors.As(err, &verr):
			zap.L().Debug("Registration rejected", zap.Strings("fields", verr.Fields.Fields()), zap.String("requestID", requestID))

			// Passwords are never echoed back
			data.Password, data.PasswordConfirmation = "", ""

			view.Render(c, http.StatusUnprocessableEntity, "users_new.html", gin.H{
				"title":  "Sign up",
				"form":   data,
				"errors": verr.Fields,
			})
		case errors.Is(err, service.ErrMailFailed) && u != nil:
			zap.L().Error("Failed to send verification email", zap.Error(err), zap.String("userID", u.ID), zap.String("requestID", requestID))

			view.Redirect(c, view.VerifyPath(u.ID), view.Flash{
				Alert: "Your account was created but we couldn't send the code. Please request a new one.",
			})
		default:
			view.InternalError(c, "Failed to register user", err)
		}

		return
	}

	view.Redirect(c, view.VerifyPath(u.ID), view.Flash{Notice: "Code sent to your email."})
}
