package auth

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// Gin context keys set by the middleware.
const (
	KeyReviewerUID  = "reviewer_uid"
	KeyReviewerName = "reviewer_name"
)

// Middleware validates Firebase ID tokens and stores the reviewer's uid and
// display name in the request context.
func Middleware(authClient *auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decoded, err := authClient.VerifyIDToken(context.Background(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(KeyReviewerUID, decoded.UID)
		c.Set(KeyReviewerName, displayName(decoded.Claims))
		c.Next()
	}
}

// DevMiddleware trusts X-Reviewer-Uid / X-Reviewer-Name headers. Only wired
// when no Firebase credentials are configured; lets local development and
// tests run without a token service.
func DevMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-Reviewer-Uid"))
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing X-Reviewer-Uid header"})
			c.Abort()
			return
		}
		c.Set(KeyReviewerUID, uid)
		c.Set(KeyReviewerName, strings.TrimSpace(c.GetHeader("X-Reviewer-Name")))
		c.Next()
	}
}

func displayName(claims map[string]interface{}) string {
	if name, ok := claims["name"].(string); ok && name != "" {
		return name
	}
	if email, ok := claims["email"].(string); ok {
		return email
	}
	return ""
}

// extractToken extracts the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
