package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
)

// GetUserID returns the authenticated user's ID, or 0 when the request is anonymous.
func GetUserID(c *gin.Context) int64 {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

// SetUser stores the authenticated identity on the gin context.
func SetUser(c *gin.Context, userID int64, email string) {
	c.Set(userIDKey, userID)
	c.Set(userEmailKey, email)
}
