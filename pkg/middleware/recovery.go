package middleware

import (
	"net/http"

	"blog-admin/pkg/logger"

	"github.com/gin-gonic/gin"
)

// HandlePanics keeps the error body shape of every other failure so the
// admin client can still toast it.
func HandlePanics(log *logger.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		log.Error("Recovered from panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
