package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sufra-app/restaurant-api/auth"
	"github.com/sufra-app/restaurant-api/middleware"
	"gorm.io/gorm"
)

// SetupAuthRoutes registers all “/auth/*” endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register(db))
		authGroup.POST("/login", auth.Login(db))
		authGroup.POST("/guest", auth.CreateGuestSession(db))

		// Session + capability resolution for the client gate
		authGroup.GET("/session", middleware.OptionalToken, auth.GetSession(db))
		authGroup.GET("/roles", middleware.ValidateToken, auth.GetRoles(db))

		// Cold-start path for the very first administrator
		authGroup.POST("/bootstrap-admin", middleware.ValidateToken, auth.BootstrapAdminHandler(db))
	}
}
