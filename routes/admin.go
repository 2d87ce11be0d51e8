package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/sufra-app/restaurant-api/controllers/admin"
	cartControllers "github.com/sufra-app/restaurant-api/controllers/cart"
	menuControllers "github.com/sufra-app/restaurant-api/controllers/menu"
	userControllers "github.com/sufra-app/restaurant-api/controllers/user"
	"github.com/sufra-app/restaurant-api/middleware"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

// SetupAdminRoutes registers all “/admin/*” endpoints. Requires the admin role.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken, middleware.RequireRole(db, models.RoleAdmin))
	{
		// ─────────── Staff & User Management ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(db))

		staffMgmt := adminGroup.Group("/staff")
		{
			staffMgmt.GET("", adminController.ListStaff(db))
			staffMgmt.POST("/grant", adminController.GrantRole(db))
			staffMgmt.POST("/revoke", adminController.RevokeRole(db))
		}

		// ─────────── Menu Management ───────────
		menuAdmin := adminGroup.Group("/menu")
		{
			menuAdmin.GET("", menuControllers.GetAllMenuItems(db))
			menuAdmin.POST("", menuControllers.CreateMenuItem(db))
			menuAdmin.PUT("/:id", menuControllers.UpdateMenuItem(db))
			menuAdmin.DELETE("/:id", menuControllers.DeleteMenuItem(db))
			menuAdmin.POST("/import-excel", menuControllers.ImportMenuFromExcel(db))
			menuAdmin.GET("/export-excel", menuControllers.ExportMenuToExcel(db))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", menuControllers.CreateCategory(db))
			categoryAdmin.PUT("/:id", menuControllers.UpdateCategory(db))
			categoryAdmin.DELETE("/:id", menuControllers.DeleteCategory(db))
		}

		// ─────────── Coupon Management ───────────
		couponAdmin := adminGroup.Group("/coupons")
		{
			couponAdmin.GET("", adminController.ListCoupons(db))
			couponAdmin.POST("", adminController.CreateCoupon(db))
			couponAdmin.DELETE("/:id", adminController.DeleteCoupon(db))
		}

		// -------- Customer Cart Inspection --------
		cartMgmt := adminGroup.Group("/user-cart")
		{
			cartMgmt.GET("/:user_id", cartControllers.GetAdminUserCart(db))
		}
	}
}
