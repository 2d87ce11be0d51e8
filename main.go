package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sufra-app/restaurant-api/auth"
	orderControllers "github.com/sufra-app/restaurant-api/controllers/order"
	"github.com/sufra-app/restaurant-api/models"
	"github.com/sufra-app/restaurant-api/routes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	bootstrapEmail := flag.String("bootstrap-admin", "", "grant the admin role to this user's email and exit")
	flag.Parse()

	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.GuestSession{},
		&models.Category{},
		&models.MenuItem{},
		&models.Cart{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderItem{},
		&models.Coupon{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// Operator provisioning path for the first administrator
	if *bootstrapEmail != "" {
		granted, err := auth.BootstrapAdminByEmail(db, *bootstrapEmail)
		if err != nil {
			log.Fatalf("❌ Bootstrap failed: %v", err)
		}
		if granted {
			log.Printf("✅ Admin role granted to %s", *bootstrapEmail)
		} else {
			log.Printf("⚠️ An admin already exists, nothing granted")
		}
		return
	}

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Real-time order feed, shared by every controller that mutates orders
	hub := orderControllers.NewHub()

	// Setup routes
	routes.SetupRoutes(r, db, hub)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("❌ DB connection failed: %v", err)
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect DB: %v", err)
	}
	return db
}
