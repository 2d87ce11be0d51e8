package auth

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sufra-app/restaurant-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// Optional guest session whose cart is merged into the user's cart.
	GuestID string `json:"guest_id"`
}

// POST /auth/register
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		user := models.User{
			ID:           uuid.NewString(),
			Email:        req.Email,
			PasswordHash: string(hash),
			Name:         req.Name,
			Phone:        req.Phone,
			Cart:         models.Cart{OwnerID: ""}, // OwnerID set below, gorm fills the association
		}
		user.Cart.OwnerID = user.ID

		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}

		token, err := issueToken(user.ID, false)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
	}
}

// POST /auth/login
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var user models.User
		if err := db.Preload("Cart.Items").Where("email = ?", req.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		// Merge Guest Cart → User Cart
		cartMerged := false
		if req.GuestID != "" {
			merged, err := MergeGuestCart(db, req.GuestID, user.ID)
			if err != nil {
				// Sign-in still succeeds; the guest cart just stays behind.
				c.Header("X-Cart-Merge-Error", err.Error())
			}
			cartMerged = merged
		}

		token, err := issueToken(user.ID, false)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":        user,
			"token":       token,
			"cart_merged": cartMerged,
		})
	}
}

// MergeGuestCart folds a guest cart into the user's cart: union by line item
// id, quantities summed. The guest cart is deleted afterwards.
func MergeGuestCart(db *gorm.DB, guestID, userID string) (bool, error) {
	merged := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var guestCart models.Cart
		if err := tx.Preload("Items").Where("owner_id = ?", guestID).First(&guestCart).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil // nothing to merge
			}
			return err
		}

		var userCart models.Cart
		err := tx.Preload("Items").Where("owner_id = ?", userID).First(&userCart).Error
		if err == gorm.ErrRecordNotFound {
			userCart = models.Cart{OwnerID: userID}
			if err := tx.Create(&userCart).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, guestLine := range guestCart.Items {
			var line models.CartLine
			err := tx.Where("cart_id = ? AND item_id = ?", userCart.CartID, guestLine.ItemID).First(&line).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				newLine := models.CartLine{
					CartID:   userCart.CartID,
					ItemID:   guestLine.ItemID,
					Name:     guestLine.Name,
					Price:    guestLine.Price,
					Image:    guestLine.Image,
					Quantity: guestLine.Quantity,
					AddedAt:  time.Now(),
				}
				if err := tx.Create(&newLine).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				line.Quantity += guestLine.Quantity
				line.AddedAt = time.Now()
				if err := tx.Save(&line).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Where("cart_id = ?", guestCart.CartID).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&guestCart).Error; err != nil {
			return err
		}

		merged = true
		return nil
	})
	return merged, err
}

// issueToken generates a signed JWT for a user or guest session.
func issueToken(id string, guest bool) (string, error) {
	lifetime := 30 * 24 * time.Hour
	if guest {
		lifetime = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"user_id": id,
		"guest":   guest,
		"exp":     time.Now().Add(lifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
