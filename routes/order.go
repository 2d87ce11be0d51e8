package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/sufra-app/restaurant-api/controllers/order"
	"github.com/sufra-app/restaurant-api/middleware"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, hub *orderControllers.Hub) {
	orders := r.Group("/orders")
	{
		// Create a new order (guest or signed-in customer)
		orders.POST("", middleware.OptionalToken, orderControllers.PlaceOrderHandler(db, hub))

		// Customer-facing tracking by order number
		orders.GET("/track/:orderNumber", orderControllers.TrackOrderHandler(db))

		// Orders of the signed-in customer
		orders.GET("/mine", middleware.ValidateToken, orderControllers.GetUserOrdersHandler(db))

		// Kitchen/admin board: filtered list + live websocket feed
		staff := orders.Group("")
		staff.Use(middleware.ValidateToken, middleware.RequireRole(db, models.RoleKitchen))
		{
			staff.GET("", orderControllers.GetOrdersHandler(db))
			staff.GET("/ws", hub.Handler())

			// Update order status (e.g., preparing, ready)
			staff.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db, hub))

			// Update the item list / prepared flags
			staff.PUT("/:orderID/items", orderControllers.UpdateOrderItemsHandler(db, hub))
		}

		// Delete an order (admin only)
		orders.DELETE("/:orderID",
			middleware.ValidateToken,
			middleware.RequireRole(db, models.RoleAdmin),
			orderControllers.DeleteOrderHandler(db, hub),
		)
	}
}
