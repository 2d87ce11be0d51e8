package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/sufra-app/restaurant-api/controllers/order"
	paymentControllers "github.com/sufra-app/restaurant-api/controllers/payment"
	"github.com/sufra-app/restaurant-api/middleware"
	"gorm.io/gorm"
)

func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB, hub *orderControllers.Hub) {
	payment := r.Group("/payments")
	{
		// Payment intent creation for checkout
		payment.POST("/intent", middleware.OptionalToken, paymentControllers.PaymentIntentHandler(db))

		// Coupon validation during checkout
		payment.POST("/validate-coupon", paymentControllers.ValidateCouponHandler(db))

		// Webhook endpoint: middleware handles sandbox/prod verification
		payment.POST("/webhook",
			middleware.PaymentWebhookAuth(),
			paymentControllers.PaymentWebhookHandler(db, hub),
		)
	}
}
