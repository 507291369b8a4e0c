package middleware

import (
	"tasksync/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CtxOperation is set by the handler once the operation name is known.
const CtxOperation = "operationName"

// OpLog records each executed operation after the handler ran. Anonymous
// requests that resolved no identity are not recorded. Writes are
// best-effort and never fail the request.
func OpLog(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		op := c.GetString(CtxOperation)
		if op == "" {
			return
		}

		var userID *string
		if user := CurrentUser(c); user != nil {
			userID = &user.ID
		} else if !IsAdmin(c) {
			return
		}

		entry := models.OpLog{
			UserID:    userID,
			Operation: op,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		_ = db.Create(&entry).Error
	}
}
