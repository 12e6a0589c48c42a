package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/consultio/psa-api/internal/config"
	"github.com/consultio/psa-api/internal/constants"
	"github.com/consultio/psa-api/internal/database"
	"github.com/consultio/psa-api/internal/handlers"
	"github.com/consultio/psa-api/internal/middleware"
	"github.com/consultio/psa-api/internal/repository"
	"github.com/consultio/psa-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	tsRepo := repository.NewTimesheetRepository(db)
	forecastRepo := repository.NewForecastRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	notificationService := services.NewNotificationService(notificationRepo)
	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo, userRepo)
	timesheetService := services.NewTimesheetService(tsRepo, projectRepo, userRepo, notificationService)
	forecastService := services.NewForecastService(forecastRepo, tsRepo, projectRepo, userRepo)
	metricsService := services.NewMetricsService(tsRepo, projectRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService)
	forecastHandler := handlers.NewForecastHandler(forecastService)
	analyticsHandler := handlers.NewAnalyticsHandler(metricsService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	projectHandler := handlers.NewProjectHandler(projectService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "PSA API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Timesheet routes (protected)
		timesheets := api.Group("/timesheets")
		timesheets.Use(middleware.RequireAuth())
		{
			timesheets.GET("", timesheetHandler.List)
			timesheets.GET("/week", timesheetHandler.Week)
			timesheets.POST("/save", timesheetHandler.Save)
			timesheets.POST("/submit", timesheetHandler.Submit)
			timesheets.GET("/pending", middleware.RequireApprover(), timesheetHandler.Pending)
			timesheets.POST("/bulk-approve", middleware.RequireApprover(), timesheetHandler.BulkApprove)
			timesheets.POST("/bulk-reject", middleware.RequireApprover(), timesheetHandler.BulkReject)
			timesheets.PATCH("/:id/approve", middleware.RequireApprover(), timesheetHandler.Approve)
			timesheets.PATCH("/:id/reject", middleware.RequireApprover(), timesheetHandler.Reject)
			timesheets.PATCH("/:id/revert", timesheetHandler.Revert)
			timesheets.DELETE("/:id", timesheetHandler.Delete)
		}

		// Resource forecast routes (protected)
		forecasts := api.Group("/resource-forecasts")
		forecasts.Use(middleware.RequireAuth())
		{
			forecasts.GET("", middleware.RequireForecastEditor(), forecastHandler.Grid)
			forecasts.POST("", middleware.RequireForecastEditor(), forecastHandler.Upsert)
			forecasts.GET("/capacity", forecastHandler.Capacity)
		}

		// Analytics routes (protected)
		analytics := api.Group("/analytics")
		analytics.Use(middleware.RequireAuth())
		{
			analytics.GET("/user/:id", analyticsHandler.UserMetrics)
			analytics.GET("/projects", middleware.RequireApprover(), analyticsHandler.ProjectMetrics)
			analytics.GET("/manager", middleware.RequireApprover(), analyticsHandler.ManagerMetrics)
			analytics.GET("/pending-by-submitter", middleware.RequireApprover(), analyticsHandler.PendingBySubmitter)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/timesheets", notificationHandler.ClearTimesheets)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.GET("", projectHandler.List)
			projects.POST("", middleware.RequireApprover(), projectHandler.Create)
			projects.GET("/assignments", projectHandler.MyAssignments)
			projects.GET("/:id", projectHandler.Get)
			projects.POST("/:id/role-types", middleware.RequireApprover(), projectHandler.AddRoleType)
			projects.POST("/:id/resources", middleware.RequireApprover(), projectHandler.AssignResource)
		}

		// Client routes (protected)
		clients := api.Group("/clients")
		clients.Use(middleware.RequireAuth())
		{
			clients.GET("", projectHandler.ListClients)
			clients.POST("", middleware.RequireApprover(), projectHandler.CreateClient)
		}
	}

	// Start server
	addr := ":" + cfg.ServerPort
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
