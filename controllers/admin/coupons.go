package adminController

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

type CouponInput struct {
	Code           string          `json:"code" binding:"required"`
	Percent        int             `json:"percent"`
	Amount         decimal.Decimal `json:"amount"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	Active         *bool           `json:"active"`
}

func ListCoupons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupons []models.Coupon
		if err := db.Order("created_at desc").Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
			return
		}
		c.JSON(http.StatusOK, coupons)
	}
}

func CreateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Percent < 0 || input.Percent > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Percent must be between 0 and 100"})
			return
		}
		if input.Percent == 0 && !input.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fixed coupons need a positive amount"})
			return
		}

		coupon := models.Coupon{
			Code:           input.Code,
			Percent:        input.Percent,
			Amount:         input.Amount,
			MinOrderAmount: input.MinOrderAmount,
			ExpiresAt:      input.ExpiresAt,
			Active:         true,
		}
		if input.Active != nil {
			coupon.Active = *input.Active
		}

		if err := db.Create(&coupon).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Coupon code already exists"})
			return
		}
		c.JSON(http.StatusCreated, coupon)
	}
}

func DeleteCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coupon ID"})
			return
		}

		result := db.Delete(&models.Coupon{}, id)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coupon"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
	}
}
