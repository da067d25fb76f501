package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/reisen/shared-calendar-api/internal/config"
	"github.com/reisen/shared-calendar-api/internal/constants"
	"github.com/reisen/shared-calendar-api/internal/database"
	"github.com/reisen/shared-calendar-api/internal/handlers"
	"github.com/reisen/shared-calendar-api/internal/middleware"
	"github.com/reisen/shared-calendar-api/internal/repository"
	"github.com/reisen/shared-calendar-api/internal/services"
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
	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(database.GetDB()); err != nil {
			log.Fatalf("Failed to add indexes: %v", err)
		}
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // password (empty = no password)
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

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	eventRepo := repository.NewEventRepository(db)

	identityService := services.NewIdentityService(userRepo)
	calendarService := services.NewCalendarService(calendarRepo, userRepo)
	eventService := services.NewEventService(eventRepo, calendarRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(identityService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)
	eventHandler := handlers.NewEventHandler(eventService)
	sharedHandler := handlers.NewSharedHandler(calendarService, eventService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Shared Calendar API is running",
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

		// Calendar routes (protected)
		calendar := api.Group("/calendar")
		calendar.Use(middleware.RequireAuth())
		{
			calendar.POST("", calendarHandler.CreateCalendar)
			calendar.GET("", calendarHandler.GetCalendar)
			calendar.DELETE("", middleware.RequireCalendar(), calendarHandler.DeleteCalendar)
			calendar.POST("/share", middleware.RequireCalendar(), calendarHandler.GenerateShareLink)
			calendar.DELETE("/share", middleware.RequireCalendar(), calendarHandler.RevokeShareLink)
		}

		// Event routes (protected)
		events := api.Group("/events")
		events.Use(middleware.RequireAuth())
		{
			events.GET("", middleware.RequireCalendar(), eventHandler.ListEvents)
			events.POST("", middleware.RequireCalendar(), eventHandler.CreateEvent)
			events.PATCH("/:id", eventHandler.UpdateEvent)
			events.DELETE("/:id", eventHandler.DeleteEvent)
		}

		// Anonymous share-link access
		api.GET("/shared/:token", sharedHandler.GetSharedCalendar)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
