package cartControllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

type CartLineInput struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type addOn struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ResolveItem validates a (possibly composite) cart line id against the menu
// and returns the display name, unit price and image for the snapshot.
// "<menu-id>:<addon-name>" folds the add-on price into the unit price.
func ResolveItem(db *gorm.DB, itemID string) (string, decimal.Decimal, string, error) {
	baseID, addonName, _ := strings.Cut(itemID, ":")

	var item models.MenuItem
	if err := db.First(&item, "id = ?", baseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", decimal.Zero, "", errors.New("menu item does not exist")
		}
		return "", decimal.Zero, "", err
	}
	if !item.Available {
		return "", decimal.Zero, "", errors.New("menu item is not available")
	}

	name, price := item.Name, item.Price
	if addonName != "" {
		var addOns []addOn
		if err := json.Unmarshal(item.AddOns, &addOns); err != nil {
			return "", decimal.Zero, "", errors.New("menu item has no such add-on")
		}
		found := false
		for _, a := range addOns {
			if strings.EqualFold(a.Name, addonName) {
				price = price.Add(a.Price)
				name = name + " (" + a.Name + ")"
				found = true
				break
			}
		}
		if !found {
			return "", decimal.Zero, "", errors.New("menu item has no such add-on")
		}
	}
	return name, price, item.Image, nil
}

// fetchOrCreateCart loads the owner's cart, creating it on first use.
func fetchOrCreateCart(db *gorm.DB, ownerID string) (models.Cart, error) {
	var cart models.Cart
	err := db.Where("owner_id = ?", ownerID).First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		cart = models.Cart{OwnerID: ownerID}
		err = db.Create(&cart).Error
	}
	return cart, err
}

// upsertLine sets the quantity of a line, creating it when absent.
func upsertLine(db *gorm.DB, cart models.Cart, input CartLineInput) (models.CartLine, int, error) {
	name, price, image, err := ResolveItem(db, input.ItemID)
	if err != nil {
		return models.CartLine{}, http.StatusBadRequest, err
	}

	var line models.CartLine
	err = db.Where("cart_id = ? AND item_id = ?", cart.CartID, input.ItemID).First(&line).Error
	if err == gorm.ErrRecordNotFound {
		line = models.CartLine{
			CartID:   cart.CartID,
			ItemID:   input.ItemID,
			Name:     name,
			Price:    price,
			Image:    image,
			Quantity: input.Quantity,
			AddedAt:  time.Now(),
		}
		if err := db.Create(&line).Error; err != nil {
			return models.CartLine{}, http.StatusInternalServerError, errors.New("failed to add item to cart")
		}
		return line, http.StatusCreated, nil
	}
	if err != nil {
		return models.CartLine{}, http.StatusInternalServerError, errors.New("failed to fetch cart line")
	}

	line.Quantity = input.Quantity
	line.AddedAt = time.Now()
	if err := db.Save(&line).Error; err != nil {
		return models.CartLine{}, http.StatusInternalServerError, errors.New("failed to update cart line")
	}
	return line, http.StatusOK, nil
}

// POST /user/cart
func UpdateCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		var input CartLineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := fetchOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
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

// DELETE /user/cart/:item_id
func DeleteCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)
		itemID := c.Param("item_id")

		var cart models.Cart
		if err := db.Where("owner_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
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

// DELETE /user/cart
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		var cart models.Cart
		if err := db.Where("owner_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		if err := db.Where("cart_id = ?", cart.CartID).Delete(&models.CartLine{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /user/cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		cart, err := fetchOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if err := db.Preload("Items").First(&cart, cart.CartID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": cart.Items, "subtotal": cart.Subtotal()})
	}
}

// GET /admin/user-cart/:user_id
func GetAdminUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		var cart models.Cart
		if err := db.Preload("Items").Where("owner_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}

		c.JSON(http.StatusOK, cart.Items)
	}
}
