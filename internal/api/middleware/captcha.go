package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hsnnder/real-estatemvp/internal/captcha"
)

const (
	// ContextKeyIsHumanVerified holds the key for captcha status in Gin context.
	ContextKeyIsHumanVerified = "isHumanVerified"
	// TurnstileFormField is the form field the Turnstile widget posts its token in.
	TurnstileFormField = "cf-turnstile-response"
)

// CaptchaMiddleware verifies the Turnstile token posted with a form. Without a
// configured secret every request passes. Failed checks redirect to failureURL.
func CaptchaMiddleware(verifier captcha.ITurnstileVerifier, failureURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.Enabled() {
			c.Set(ContextKeyIsHumanVerified, true)
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		verified, err := verifier.Verify(c.Request.Context(), c.PostForm(TurnstileFormField), clientIP)
		if err != nil {
			log.Printf("Error verifying Turnstile token for %s: %v", clientIP, err)
		}
		if !verified {
			c.Redirect(http.StatusFound, failureURL)
			c.Abort()
			return
		}

		c.Set(ContextKeyIsHumanVerified, true)
		c.Next()
	}
}
