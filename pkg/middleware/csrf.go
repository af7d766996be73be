package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	CSRFCookie    = "csrf_token"
	CSRFFormField = "authenticity_token"
	CSRFHeader    = "X-CSRF-Token"

	csrfTokenLength = 32
)

// NewCSRFMiddleware issues every visitor a random token cookie and sets it
// as csrfToken for forms to embed. Unsafe requests must echo the cookie's
// token in the form field or header, otherwise onReject handles them and the
// chain stops.
func NewCSRFMiddleware(onReject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CSRFCookie)
		if err != nil || len(token) != csrfTokenLength {
			token = ""
		}

		if !safeMethod(c.Request.Method) {
			sent := c.GetHeader(CSRFHeader)
			if sent == "" {
				sent = c.PostForm(CSRFFormField)
			}

			if token == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				zap.L().Debug("CSRF token mismatch", zap.String("path", c.Request.URL.Path), zap.String("requestID", c.GetString("requestID")))

				if token == "" {
					token = issueCSRFToken(c)
				}
				c.Set("csrfToken", token)

				onReject(c)
				c.Abort()
				return
			}
		}

		if token == "" {
			token = issueCSRFToken(c)
		}

		c.Set("csrfToken", token)
		c.Next()
	}
}

func issueCSRFToken(c *gin.Context) string {
	token := gonanoid.Must(csrfTokenLength)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CSRFCookie, token, 0, "/", "", c.GetBool("secureCookies"), true)

	return token
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}

	return false
}
