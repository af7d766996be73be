package user

import (
	"bitwise74/mailverify/app/view"
	"bitwise74/mailverify/internal"
	"bitwise74/mailverify/internal/repo"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserShow renders the profile page of any existing user
func UserShow(c *gin.Context, d *internal.Deps) {
	u, err := d.Accounts.User(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			view.NotFound(c)
			return
		}

		view.InternalError(c, "Failed to fetch user", err)
		return
	}

	view.Render(c, http.StatusOK, "users_show.html", gin.H{
		"title": u.Name,
		"user":  u,
	})
}
