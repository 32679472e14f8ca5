package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadBodyLimitMiddleware caps the request body of upload routes.
func UploadBodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes && c.Request.ContentLength != -1 {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("request body cannot exceed %d bytes", maxBytes)})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
