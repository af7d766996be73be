package middleware

import "github.com/gin-gonic/gin"

// NewCookieMiddleware tells cookie writers further down the chain whether
// to mark cookies Secure
func NewCookieMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("secureCookies", secure)
		c.Next()
	}
}
