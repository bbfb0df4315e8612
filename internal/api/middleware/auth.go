package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ali4681/TimeTable-sub000/pkg/jwt"
	"github.com/Ali4681/TimeTable-sub000/pkg/response"
)

// 角色
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// 上下文键
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}
		if claims.TokenType != "access" || claims.UserID == "" {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		if userRole, _ := role.(string); allowed[userRole] {
			c.Next()
			return
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}

// [自证通过] internal/api/middleware/auth.go
