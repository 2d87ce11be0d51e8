package paymentControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

type ValidateCouponRequest struct {
	Code        string          `json:"code" binding:"required"`
	OrderAmount decimal.Decimal `json:"order_amount" binding:"required"`
}

// POST /payments/validate-coupon
func ValidateCouponHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ValidateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "invalid request: " + err.Error()})
			return
		}

		var coupon models.Coupon
		if err := db.Where("code = ?", req.Code).First(&coupon).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, gin.H{"valid": false, "error": "unknown coupon code"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"valid": false, "error": "failed to look up coupon"})
			return
		}

		discount, err := coupon.DiscountFor(req.OrderAmount)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"valid":           true,
			"discount_amount": discount,
		})
	}
}
