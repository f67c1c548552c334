package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The identity API is called directly from web clients on arbitrary
// origins, so every endpoint carries the same permissive header set.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Origin, X-Requested-With, Content-Type, Accept"
)

// CORS attaches the fixed cross-origin header set to every response and
// answers preflight OPTIONS requests with an empty 200 body.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", corsAllowOrigin)
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
