package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/sufra-app/restaurant-api/controllers/order"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry‐point that wires up all route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, hub *orderControllers.Hub) {
	// Public Auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Public menu browsing
	SetupMenuRoutes(r, db)

	// User routes (JWT‐protected) + guest cart routes
	SetupUserRoutes(r, db)

	// Order placement, tracking and the kitchen board
	SetupOrderRoutes(r, db, hub)

	// Admin back-office (admin role required)
	SetupAdminRoutes(r, db)

	// Payment provider glue
	SetupPaymentRoutes(r, db, hub)
}
