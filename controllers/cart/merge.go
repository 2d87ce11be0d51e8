package cartControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

type MergeCartRequest struct {
	Lines []CartLineInput `json:"lines" binding:"required"`
}

// POST /user/cart/merge
// Folds a locally kept cart into the server cart at sign-in: union by item
// id, quantities summed. Prices are re-resolved from the menu, never trusted
// from the client.
func MergeCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		var req MergeCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := fetchOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			for _, input := range req.Lines {
				if input.Quantity < 1 {
					continue
				}

				name, price, image, err := ResolveItem(tx, input.ItemID)
				if err != nil {
					// Items gone from the menu are skipped, not fatal.
					continue
				}

				var line models.CartLine
				err = tx.Where("cart_id = ? AND item_id = ?", cart.CartID, input.ItemID).First(&line).Error
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
					if err := tx.Create(&line).Error; err != nil {
						return err
					}
					continue
				}
				if err != nil {
					return err
				}

				line.Quantity += input.Quantity
				line.Price = price
				line.AddedAt = time.Now()
				if err := tx.Save(&line).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to merge cart"})
			return
		}

		var merged models.Cart
		if err := db.Preload("Items").First(&merged, cart.CartID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch merged cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": merged.Items, "subtotal": merged.Subtotal()})
	}
}
