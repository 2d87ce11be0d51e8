package menuControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

// GetMenu returns the customer-facing menu: available items only, optionally
// filtered by category.
// Query params: /menu?category_id=2
func GetMenu(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Where("available = ?", true).Order("name asc")

		if categoryParam := c.Query("category_id"); categoryParam != "" {
			categoryID, err := strconv.Atoi(categoryParam)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
				return
			}
			query = query.Where("category_id = ?", categoryID)
		}

		var items []models.MenuItem
		if err := query.Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve menu"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GetMenuItemByID returns a single menu item.
// URL param: /menu/:id
func GetMenuItemByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Menu item ID is required"})
			return
		}

		var item models.MenuItem
		if err := db.First(&item, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve menu item"})
			}
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// GetAllMenuItems returns every item including unavailable ones (back-office).
func GetAllMenuItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var items []models.MenuItem
		if err := db.Order("category_id asc, name asc").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve menu items"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
