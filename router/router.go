package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/controllers"
	"github.com/yeremiapane/canteen-app/middlewares"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Serve gambar menu yang di-upload
	workDir, _ := os.Getwd()
	uploadsPath := filepath.Join(workDir, "public", "uploads")
	r.Static("/uploads", uploadsPath)

	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			// Hanya izinkan akses ke file gambar
			if !strings.HasSuffix(strings.ToLower(c.Request.URL.Path), ".jpg") &&
				!strings.HasSuffix(strings.ToLower(c.Request.URL.Path), ".jpeg") &&
				!strings.HasSuffix(strings.ToLower(c.Request.URL.Path), ".png") &&
				!strings.HasSuffix(strings.ToLower(c.Request.URL.Path), ".gif") &&
				!strings.HasSuffix(strings.ToLower(c.Request.URL.Path), ".webp") {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	})

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	menuItemCtrl := controllers.NewMenuItemController(db)
	weeklyMenuCtrl := controllers.NewWeeklyMenuController(db)
	cartCtrl := controllers.NewCartController(db)
	orderCtrl := controllers.NewOrderController(db)
	walletCtrl := controllers.NewWalletController(db)
	topupCtrl := controllers.NewTopupController(db)
	studentCtrl := controllers.NewStudentController(db)
	parentCtrl := controllers.NewParentController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Menu minggu berjalan dan katalog bisa dilihat tanpa login
	r.GET("/menu/current", weeklyMenuCtrl.GetCurrentMenu)
	r.GET("/menu-items", menuItemCtrl.GetAllItems)
	r.GET("/menu-items/:item_id", menuItemCtrl.GetItemByID)

	// Callback pembayaran dari gateway (diverifikasi lewat signature)
	r.POST("/topups/callback", topupCtrl.GatewayCallback)

	// ----------------------------------------------------------------
	//                      PARENT ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	api.Use(middlewares.ParentOnly())
	{
		api.GET("/profile", userCtrl.GetProfile)
		api.GET("/me", parentCtrl.GetMyProfile)
		api.PATCH("/me", parentCtrl.UpdateMyProfile)
		api.GET("/students", studentCtrl.GetMyStudents)

		// Cart
		api.GET("/cart", cartCtrl.GetCart)
		api.PUT("/cart", cartCtrl.SaveCart)
		api.DELETE("/cart", cartCtrl.ClearCart)

		// Orders
		api.POST("/orders", orderCtrl.PlaceOrder)
		api.GET("/orders", orderCtrl.GetMyOrders)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)

		// Wallet
		api.GET("/wallet", walletCtrl.GetBalance)
		api.GET("/wallet/transactions", walletCtrl.GetTransactions)

		// Topups dengan rate limiter khusus
		topupGroup := api.Group("/topups")
		topupGroup.Use(middlewares.TopupRateLimiter())
		topupGroup.Use(middlewares.TopupSecurityHeaders())
		{
			topupGroup.POST("", topupCtrl.RequestTopup)
			topupGroup.POST("/gateway", topupCtrl.CreateGatewayTopup)
			topupGroup.GET("", topupCtrl.GetMyTopups)
			topupGroup.GET("/:topup_id/status", topupCtrl.GetTopupStatus)
		}

		// Notifications
		api.GET("/notifications", notificationCtrl.GetMyNotifications)
		api.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkAsRead)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())
	admin.Use(middlewares.AdminOnly())
	{
		admin.GET("/profile", userCtrl.GetProfile)
		admin.GET("/users", userCtrl.GetAllUsers)

		// MENU ITEMS
		admin.GET("/menu-items", menuItemCtrl.GetAllItems)
		admin.POST("/menu-items", menuItemCtrl.CreateItem)
		admin.GET("/menu-items/:item_id", menuItemCtrl.GetItemByID)
		admin.PATCH("/menu-items/:item_id", menuItemCtrl.UpdateItem)
		admin.PATCH("/menu-items/:item_id/availability", menuItemCtrl.SetAvailability)
		admin.DELETE("/menu-items/:item_id", menuItemCtrl.DeleteItem)
		admin.POST("/menu-items/:item_id/image", menuItemCtrl.UploadItemImage)
		admin.POST("/menu-items/import", menuItemCtrl.ImportItems)

		// WEEKLY MENUS
		admin.GET("/weekly-menus/:week_start", weeklyMenuCtrl.GetMenuByWeek)
		admin.PUT("/weekly-menus/:week_start", weeklyMenuCtrl.UpdateMenu)
		admin.POST("/weekly-menus/:week_start/publish", weeklyMenuCtrl.PublishMenu)
		admin.POST("/weekly-menus/:week_start/unpublish", weeklyMenuCtrl.UnpublishMenu)
		admin.POST("/weekly-menus/:week_start/archive", weeklyMenuCtrl.ArchiveMenu)
		admin.POST("/weekly-menus/:week_start/revert/:version", weeklyMenuCtrl.RevertMenu)
		admin.GET("/weekly-menus/:week_start/versions", weeklyMenuCtrl.ListVersions)
		admin.POST("/weekly-menus/:week_start/copy-previous", weeklyMenuCtrl.CopyFromPreviousWeek)
		admin.POST("/weekly-menus/validate", weeklyMenuCtrl.ValidateMenu)

		// ORDERS
		admin.GET("/orders", orderCtrl.GetOrdersByDate)
		admin.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		admin.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		admin.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
		admin.POST("/orders/:order_id/refund", orderCtrl.RefundOrder)
		admin.GET("/orders/statistics", orderCtrl.GetOrderStatistics)
		admin.GET("/kitchen/summary", adminCtrl.GetKitchenSummary)

		// TOPUPS
		admin.GET("/topups/pending", topupCtrl.GetPendingTopups)
		admin.POST("/topups/:topup_id/approve", topupCtrl.ApproveTopup)
		admin.POST("/topups/:topup_id/decline", topupCtrl.DeclineTopup)

		// WALLETS
		admin.GET("/parents", parentCtrl.GetAllParents)
		admin.GET("/parents/:parent_id", parentCtrl.GetParentByID)
		admin.GET("/parents/:parent_id/transactions", walletCtrl.GetParentTransactions)
		admin.POST("/parents/:parent_id/adjust", walletCtrl.AdjustBalance)
		admin.GET("/parents/:parent_id/verify-ledger", walletCtrl.VerifyLedger)

		// STUDENTS
		admin.GET("/students", studentCtrl.GetAllStudents)
		admin.POST("/students", studentCtrl.CreateStudent)
		admin.GET("/students/:student_id", studentCtrl.GetStudentByID)
		admin.PATCH("/students/:student_id", studentCtrl.UpdateStudent)
		admin.POST("/students/:student_id/link-parent", studentCtrl.LinkToParent)
		admin.PATCH("/students/:student_id/active", studentCtrl.SetActive)

		// NOTIFICATIONS
		admin.POST("/notifications", notificationCtrl.CreateNotification)
		admin.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

		// DASHBOARD & REPORTS
		admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
		admin.GET("/reports/export", adminCtrl.ExportOrdersCSV)
		admin.GET("/reports/export-pdf", adminCtrl.ExportOrdersPDF)
		admin.GET("/reports/revenue-chart", adminCtrl.GetRevenueChart)
	}

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", controllers.LiveHandler)
	}

	return r
}
