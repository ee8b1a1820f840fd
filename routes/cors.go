package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupCORS mirrors the frontend origin; credentials are required so the
// session cookie crosses origins.
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, Range")
		c.Header("Access-Control-Expose-Headers", "Accept-Ranges, Range-Unit, Content-Range")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
