package cartControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

// validGuest checks the guest session exists and has not expired.
func validGuest(db *gorm.DB, guestID string) bool {
	var guest models.GuestSession
	if err := db.First(&guest, "id = ?", guestID).Error; err != nil {
		return false
	}
	return time.Now().Before(guest.ExpiresAt)
}

// POST /guest/cart
func UpdateGuestCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := c.Query("guest_id")
		if guestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guest_id is required"})
			return
		}
		if !validGuest(db, guestID) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Guest session expired or unknown"})
			return
		}

		var input CartLineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := fetchOrCreateCart(db, guestID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch guest cart"})
			return
		}

		line, status, err := upsertLine(db, cart, input)
		if err != nil {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(status, line)
	}
}

// DELETE /guest/cart/:item_id
func DeleteGuestCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := c.Query("guest_id")
		if guestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guest_id is required"})
			return
		}
		itemID := c.Param("item_id")

		var cart models.Cart
		if err := db.Where("owner_id = ?", guestID).First(&cart).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guest cart not found"})
			return
		}

		result := db.Where("cart_id = ? AND item_id = ?", cart.CartID, itemID).Delete(&models.CartLine{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete line"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart line not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cart line deleted"})
	}
}

// GET /guest/cart
func GetGuestCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := c.Query("guest_id")
		if guestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guest_id is required"})
			return
		}

		var cart models.Cart
		if err := db.Preload("Items").Where("owner_id = ?", guestID).First(&cart).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusOK, gin.H{"items": []models.CartLine{}, "subtotal": "0"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch guest cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": cart.Items, "subtotal": cart.Subtotal()})
	}
}
