package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

// RequireRole guards staff surfaces. It must run after ValidateToken. Access
// is granted when the caller holds the required role or one that implies it.
func RequireRole(db *gorm.DB, required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		userID, _ := userIDVal.(string)

		roles, err := RolesOf(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve roles"})
			c.Abort()
			return
		}

		for _, r := range roles {
			if r.Implies(required) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": string(required) + " access required"})
		c.Abort()
	}
}

// RolesOf returns the roles granted to a user.
func RolesOf(db *gorm.DB, userID string) ([]models.Role, error) {
	var grants []models.UserRole
	if err := db.Where("user_id = ?", userID).Find(&grants).Error; err != nil {
		return nil, err
	}
	roles := make([]models.Role, 0, len(grants))
	for _, g := range grants {
		roles = append(roles, g.Role)
	}
	return roles, nil
}

// HasRole reports whether the user holds a role satisfying required.
func HasRole(db *gorm.DB, userID string, required models.Role) bool {
	roles, err := RolesOf(db, userID)
	if err != nil {
		return false
	}
	for _, r := range roles {
		if r.Implies(required) {
			return true
		}
	}
	return false
}
