// Package user contains the registration, profile and email verification
// handlers
package user

import (
	"bitwise74/mailverify/app/view"
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerBody struct {
	Name                 string `form:"name"`
	Email                string `form:"email"`
	Password             string `form:"password"`
	PasswordConfirmation string `form:"password_confirmation"`
}

// UserNew renders the registration form
func UserNew(c *gin.Context) {
	view.Render(c, http.StatusOK, "users_new.html", gin.H{
		"title": "Sign up",
		"form":  registerBody{},
	})
}
