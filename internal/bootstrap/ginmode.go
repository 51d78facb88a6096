package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode keeps gin's debug chatter out of production logs.
func SetGinMode(env string) {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}
