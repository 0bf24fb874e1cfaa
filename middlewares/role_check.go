package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/utils"
)

// AdminOnly menolak request dari user yang bukan admin
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if role != "admin" {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("admin access required"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// ParentOnly menolak request dari user yang bukan parent (admin tetap boleh
// untuk keperluan support)
func ParentOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if role != "parent" && role != "admin" {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("parent access required"))
			c.Abort()
			return
		}

		c.Next()
	}
}
