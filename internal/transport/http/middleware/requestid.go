package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-user-admin/internal/core/server"
)

const KeyRequestID = server.KeyRequestID

// validRequestID 只接受不超过 64 位的 [A-Za-z0-9._-]，其余重新生成
func validRequestID(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}

// RequestID 透传或生成请求 ID，写回响应头；访问日志从 gin.Context 取
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Header(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}
