package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hsnnder/real-estatemvp/internal/auth"
)

const (
	// ContextKeyAdmin holds the logged-in admin username in Gin context.
	ContextKeyAdmin = "adminUser"
)

// AdminSessionMiddleware admits requests carrying a valid session cookie and
// redirects everything else to the login page.
func AdminSessionMiddleware(sessionSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(auth.SessionCookieName)
		if err != nil || tokenString == "" {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}

		claims, err := auth.ValidateSessionToken(tokenString, sessionSecret)
		if err != nil {
			log.Printf("Rejected admin session from %s: %v", c.ClientIP(), err)
			c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}

		c.Set(ContextKeyAdmin, claims.Username)
		c.Next()
	}
}
