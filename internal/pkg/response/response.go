package response

import "github.com/gin-gonic/gin"

// Fail writes the canonical error shape: only the error field is present,
// everything else is absent. Success responses are written directly by the
// handlers since each endpoint has its own schema.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
