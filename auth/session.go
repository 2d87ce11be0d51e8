package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sufra-app/restaurant-api/middleware"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

// bootstrapLockKey serializes bootstrap attempts across connections.
const bootstrapLockKey = 874011

// GET /auth/session resolves the bearer token to the current identity.
// Runs behind OptionalToken so an anonymous caller gets {"session": null}
// instead of a 401.
func GetSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusOK, gin.H{"session": nil})
			return
		}
		userID, _ := userIDVal.(string)

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Guest tokens resolve to a session without a user record.
				var guest models.GuestSession
				if err := db.First(&guest, "id = ?", userID).Error; err == nil {
					c.JSON(http.StatusOK, gin.H{"session": gin.H{"guest_id": guest.ID, "expires_at": guest.ExpiresAt}})
					return
				}
				c.JSON(http.StatusOK, gin.H{"session": nil})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"session": gin.H{"user": user}})
	}
}

// GET /auth/roles returns the caller's capability set.
func GetRoles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		roles, err := middleware.RolesOf(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roles"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"roles": roles})
	}
}

// POST /auth/bootstrap-admin is the cold-start path for the first administrator.
// Grants admin iff no admin exists yet; every later caller receives
// granted=false.
func BootstrapAdminHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		if guest, _ := c.Get("guest"); guest == true {
			c.JSON(http.StatusForbidden, gin.H{"error": "Guests cannot be granted roles"})
			return
		}

		granted, err := BootstrapAdmin(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Bootstrap failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"granted": granted})
	}
}

// BootstrapAdmin grants the admin role to userID iff zero admins currently
// exist. The count and the insert run under an advisory lock so two racing
// callers cannot both win.
func BootstrapAdmin(db *gorm.DB, userID string) (bool, error) {
	granted := false
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", bootstrapLockKey).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.UserRole{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		if err := tx.Create(&models.UserRole{UserID: userID, Role: models.RoleAdmin}).Error; err != nil {
			return err
		}
		granted = true
		return nil
	})
	return granted, err
}

// BootstrapAdminByEmail is the operator provisioning path behind the
// -bootstrap-admin server flag.
func BootstrapAdminByEmail(db *gorm.DB, email string) (bool, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return false, err
	}
	return BootstrapAdmin(db, user.ID)
}
