package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/canteen-app/config"
	"github.com/yeremiapane/canteen-app/database"
	"github.com/yeremiapane/canteen-app/middlewares"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/router"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

func init() {
	// Load .env file di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	// Initialize logger
	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

func main() {
	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Simpan koneksi database ke utils untuk digunakan di controller
	utils.InitDB(db)

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Setup rate limiter (50 requests per second per IP)
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	// Change monitor mem-polling db_changes dan menyiarkan event ke
	// client websocket (dashboard admin, aplikasi parent)
	monitor := services.NewChangeMonitor(db)
	monitor.Interval = 500 * time.Millisecond
	monitor.Start()
	defer monitor.Stop()

	wallet := services.NewWalletService(db)

	// Pemeriksa kedaluwarsa untuk top-up gateway yang tidak dibayar
	topupService := services.NewTopupService(db, wallet)
	topupService.StartExpiryChecker()

	// Payment gateway untuk top-up QRIS
	if os.Getenv("MIDTRANS_SERVER_KEY") != "" {
		services.InitGatewayService(db, wallet)
		utils.InfoLogger.Println("Payment gateway initialized")
	} else {
		utils.InfoLogger.Println("MIDTRANS_SERVER_KEY not set, gateway topups disabled")
	}

	// Setup router
	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	// Set trusted proxies
	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Run server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Parent{},
		&models.Student{},
		&models.MenuItem{},
		&models.WeeklyMenu{},
		&models.WeeklyMenuVersion{},
		&models.SavedCart{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusLog{},
		&models.ParentTransaction{},
		&models.Topup{},
		&models.Notification{},
		&models.DBChange{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	// Execute triggers (hanya untuk MySQL)
	if err := database.ExecuteTriggers(db); err != nil {
		utils.ErrorLogger.Printf("Error setting up triggers: %v", err)
	}
}
