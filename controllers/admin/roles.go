package adminController

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

type roleRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// ListStaff returns every user holding a role, with their grants.
func ListStaff(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var grants []models.UserRole
		if err := db.Order("role asc").Find(&grants).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch staff"})
			return
		}

		staff := make(map[string][]models.Role)
		for _, g := range grants {
			staff[g.UserID] = append(staff[g.UserID], g.Role)
		}

		var users []models.User
		if len(staff) > 0 {
			ids := make([]string, 0, len(staff))
			for id := range staff {
				ids = append(ids, id)
			}
			if err := db.Select("id", "email", "name", "created_at").Where("id IN ?", ids).Find(&users).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch staff users"})
				return
			}
		}

		type staffEntry struct {
			User  models.User   `json:"user"`
			Roles []models.Role `json:"roles"`
		}
		out := make([]staffEntry, 0, len(users))
		for _, u := range users {
			out = append(out, staffEntry{User: u, Roles: staff[u.ID]})
		}
		c.JSON(http.StatusOK, out)
	}
}

// GrantRole gives a user a capability.
func GrantRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req roleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		role, ok := models.ParseRole(req.Role)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		grant := models.UserRole{UserID: user.ID, Role: role}
		if err := db.Where(&grant).FirstOrCreate(&grant).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grant role"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Role granted"})
	}
}

// RevokeRole removes a capability from a user.
func RevokeRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req roleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		role, ok := models.ParseRole(req.Role)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if err := db.Where("user_id = ? AND role = ?", user.ID, role).Delete(&models.UserRole{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke role"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Role revoked"})
	}
}
