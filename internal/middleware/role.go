package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/response"
)

// RequireRoles lets the request through when the token role is one of roles.
// Admin is always allowed.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles)+1)
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	allowed[domain.RoleAdmin] = struct{}{}

	return func(c *gin.Context) {
		role, err := domain.ParseRole(c.GetString(ctxRole))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if _, ok := allowed[role]; !ok {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// StaffOnly rejects guest tokens.
func StaffOnly() gin.HandlerFunc {
	return RequireRoles(
		domain.RoleManager,
		domain.RoleReceptionist,
		domain.RoleHousekeeping,
		domain.RoleMaintenance,
	)
}

// UserID returns the authenticated user id, 0 when absent.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

// Role returns the authenticated role, "" when absent.
func Role(c *gin.Context) domain.Role {
	return domain.Role(c.GetString(ctxRole))
}
