package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// более устойчиво к типам (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

// getIdentity возвращает идентичность сессии, положенную auth-middleware.
func getIdentity(c *gin.Context) (userID int, email string, ok bool) {
	userID, ok = getIntFromCtx(c, "user_id")
	if !ok {
		return 0, "", false
	}
	v, exists := c.Get("email")
	if !exists {
		return 0, "", false
	}
	email, ok = v.(string)
	if !ok || email == "" {
		return 0, "", false
	}
	return userID, email, true
}
