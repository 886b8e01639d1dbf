package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ledgerise/ledgerise-api/config"
	"github.com/ledgerise/ledgerise-api/handlers"
	"github.com/ledgerise/ledgerise-api/middleware"
	"github.com/ledgerise/ledgerise-api/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	go scheduleTokenCleanup(db)

	wsHandler := handlers.NewWSHandler()

	router := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	allowedOrigins := []string{
		frontendURL,
		"https://ledgerise.app",
		"https://www.ledgerise.app",
	}

	log.Printf("🌍 CORS: Allowing origins:")
	for _, origin := range allowedOrigins {
		log.Printf("   - %s", origin)
	}

	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		log.Printf("📨 %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.Next()
		duration := time.Since(start)
		log.Printf("✅ %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/")
		auth.Use(middleware.AuthRateLimiter())
		routes.SetupAuthRoutes(auth, db)
		v1.GET("/ws/updates", wsHandler.HandleWS)
		routes.SetupAdminRoutes(v1, db)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupUserRoutes(protected, db)
			routes.SetupCategoryRoutes(protected, db, wsHandler)
			routes.SetupBudgetRoutes(protected, db, wsHandler)
			routes.SetupInsightsRoutes(protected, db)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func scheduleTokenCleanup(db *sql.DB) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	cleanExpiredTokens(db)
	for range ticker.C {
		cleanExpiredTokens(db)
	}
}

// cleanExpiredTokens purges expired sessions, refresh tokens and
// password-reset tokens.
func cleanExpiredTokens(db *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var total int64
	statements := []string{
		`DELETE FROM refresh_tokens WHERE expires_at < NOW()`,
		`DELETE FROM sessions WHERE expires_at < NOW()`,
		`DELETE FROM password_resets WHERE expires_at < NOW()`,
	}
	for _, stmt := range statements {
		result, err := db.ExecContext(ctx, stmt)
		if err != nil {
			log.Printf("❌ Token cleanup failed: %v", err)
			return
		}
		rows, _ := result.RowsAffected()
		total += rows
	}
	if total > 0 {
		log.Printf("🧹 Cleaned %d expired token rows", total)
	}
}
