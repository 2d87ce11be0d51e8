package routes

import (
	"github.com/gin-gonic/gin"
	menuControllers "github.com/sufra-app/restaurant-api/controllers/menu"
	"gorm.io/gorm"
)

// SetupMenuRoutes registers the public menu browsing endpoints.
func SetupMenuRoutes(r *gin.Engine, db *gorm.DB) {
	menu := r.Group("/menu")
	{
		menu.GET("", menuControllers.GetMenu(db))              // GET /menu?category_id=2
		menu.GET("/:id", menuControllers.GetMenuItemByID(db))  // GET /menu/:id
	}

	r.GET("/categories", menuControllers.GetAllCategories(db)) // GET /categories
}
