package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/utils"
)

const (
	RoleHeader = "X-Staff-Role"
	roleKey    = "role"
)

// StaffRole reads the role tag from X-Staff-Role or ?role= and stores it on
// the context. The tag only filters alerts; it is not an authentication check.
func StaffRole() gin.HandlerFunc {
	return roleTag(true)
}

// OptionalStaffRole is StaffRole for routes that also serve callers without
// a role, such as feed producers. A role that is sent must still be valid.
func OptionalStaffRole() gin.HandlerFunc {
	return roleTag(false)
}

func roleTag(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(RoleHeader))
		if raw == "" {
			raw = strings.TrimSpace(c.Query("role"))
		}
		if raw == "" {
			if required {
				utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("%w: role", models.ErrMissingField))
				c.Abort()
				return
			}
			c.Next()
			return
		}

		role := models.Role(strings.ToLower(raw))
		if !role.Valid() {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown role %q", raw))
			c.Abort()
			return
		}

		c.Set(roleKey, role)
		c.Next()
	}
}

// RoleFrom returns the role set by StaffRole, or "" when the request has none.
func RoleFrom(c *gin.Context) models.Role {
	v, ok := c.Get(roleKey)
	if !ok {
		return ""
	}
	role, _ := v.(models.Role)
	return role
}
