// Package view renders the HTML pages and carries one-shot flash messages
// from a redirect to the next rendered page.
package view

import (
	"bitwise74/mailverify/pkg/validators"
	"embed"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const flashCookie = "flash"

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses every page. Pages are addressed by file name, e.g.
// "users_new.html".
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
}

type Flash struct {
	Notice string `json:"notice,omitempty"`
	Alert  string `json:"alert,omitempty"`
}

func UserPath(id string) string {
	return "/users/" + url.PathEscape(id)
}

func VerifyPath(id string) string {
	return UserPath(id) + "/verify"
}

const LoginPath = "/sessions/new"

// Redirect stores f for the next rendered page and sends a 303 to location.
func Redirect(c *gin.Context, location string, f Flash) {
	if f.Notice != "" || f.Alert != "" {
		b, _ := json.Marshal(f)

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(b), 60, "/", "", c.GetBool("secureCookies"), true)
	}

	c.Redirect(http.StatusSeeOther, location)
}

// Render writes the page name. A notice or alert already in data wins over
// the stored flash, which is consumed either way.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	f := popFlash(c)
	if _, ok := data["notice"]; !ok && f.Notice != "" {
		data["notice"] = f.Notice
	}
	if _, ok := data["alert"]; !ok && f.Alert != "" {
		data["alert"] = f.Alert
	}

	if _, ok := data["title"]; !ok {
		data["title"] = "Mail Verify"
	}

	if _, ok := data["errors"]; !ok {
		data["errors"] = validators.Errors{}
	}

	data["currentUserID"] = c.GetString("userID")
	data["csrfToken"] = c.GetString("csrfToken")
	data["requestID"] = c.GetString("requestID")

	c.HTML(status, name, data)
}

func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "error.html", gin.H{
		"status":  http.StatusNotFound,
		"message": "The page you were looking for doesn't exist.",
	})
}

func BadRequest(c *gin.Context) {
	Render(c, http.StatusBadRequest, "error.html", gin.H{
		"status":  http.StatusBadRequest,
		"message": "Invalid request body",
	})
}

// Forbidden is shown when a form comes back without a matching CSRF token
func Forbidden(c *gin.Context) {
	Render(c, http.StatusForbidden, "error.html", gin.H{
		"status":  http.StatusForbidden,
		"message": "The form has expired. Please go back, reload the page and try again.",
	})
}

// InternalError logs err under msg and renders the generic error page.
func InternalError(c *gin.Context, msg string, err error) {
	zap.L().Error(msg, zap.Error(err), zap.String("requestID", c.GetString("requestID")))

	Render(c, http.StatusInternalServerError, "error.html", gin.H{
		"status":  http.StatusInternalServerError,
		"message": "Internal server error",
	})
}

func popFlash(c *gin.Context) Flash {
	var f Flash

	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return f
	}

	c.SetCookie(flashCookie, "", -1, "/", "", c.GetBool("secureCookies"), true)

	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return f
	}

	if err := json.Unmarshal(b, &f); err != nil {
		return Flash{}
	}

	return f
}
