package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/sufra-app/restaurant-api/controllers/cart"
	userControllers "github.com/sufra-app/restaurant-api/controllers/user"
	"github.com/sufra-app/restaurant-api/middleware"
	"gorm.io/gorm"
)

// SetupUserRoutes registers all “/user/*” endpoints (JWT required) and the
// “/guest/cart” endpoints keyed by guest session id.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetUser(db))    // GET /user/
		userGroup.PUT("/", userControllers.UpdateUser(db)) // PUT /user/

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetCart(db))                   // GET /user/cart
			cartGroup.POST("/", cartControllers.UpdateCartLine(db))           // POST /user/cart
			cartGroup.POST("/merge", cartControllers.MergeCart(db))           // POST /user/cart/merge
			cartGroup.DELETE("/:item_id", cartControllers.DeleteCartLine(db)) // DELETE /user/cart/:item_id
			cartGroup.DELETE("/", cartControllers.ClearCart(db))              // DELETE /user/cart
		}
	}

	guestGroup := r.Group("/guest/cart")
	{
		guestGroup.GET("", cartControllers.GetGuestCart(db))                   // GET /guest/cart?guest_id=...
		guestGroup.POST("", cartControllers.UpdateGuestCartLine(db))           // POST /guest/cart?guest_id=...
		guestGroup.DELETE("/:item_id", cartControllers.DeleteGuestCartLine(db)) // DELETE /guest/cart/:item_id?guest_id=...
	}
}
