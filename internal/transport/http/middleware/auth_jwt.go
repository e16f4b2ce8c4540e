package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-user-admin/internal/core/auth"
	"go-user-admin/internal/transport/http/action"
	resp "go-user-admin/internal/transport/http/response"
)

// AuthJWT 校验 Bearer 令牌；requireRoles 非空时须持有其一
func AuthJWT(j *auth.JWTer, requireRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if len(requireRoles) > 0 {
			ok := false
			for _, r := range requireRoles {
				if claims.HasRole(r) {
					ok = true
					break
				}
			}
			if !ok {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}
		c.Set(action.ClaimsKey, claims)
		c.Next()
	}
}
