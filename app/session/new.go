// Package session contains the login and logout handlers
package session

import (
	"bitwise74/mailverify/app/view"
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func SessionNew(c *gin.Context) {
	view.Render(c, http.StatusOK, "sessions_new.html", gin.H{
		"title": "Log in",
		"form":  loginBody{},
	})
}
