package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/config"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/database"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/handler"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/middleware"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/repository"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	roomRepo := repository.NewChatRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret)
	registry := service.NewRegistry()
	chatSvc := service.NewChatService(messageRepo, registry)

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowCredentials: true,
	}))

	// Health
	healthH := handler.NewHealthHandler(db, registry)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Auth (public)
	authH := handler.NewAuthHandler(authSvc)
	auth := v1.Group("/auth")
	auth.Post("/register", middleware.RateLimit(5, time.Minute), authH.Register)
	auth.Post("/login", middleware.RateLimit(10, time.Minute), authH.Login)
	auth.Post("/refresh", middleware.RateLimit(20, time.Minute), authH.Refresh)
	auth.Post("/logout", authH.Logout)

	// Admin — registered BEFORE protected group. The admin key gates the
	// surface; the session token identifies the caller for the self-ban guard.
	admin := v1.Group("/admin", middleware.AdminKey(cfg.AdminKey), middleware.Auth(cfg.JWTSecret))
	adminH := handler.NewAdminHandler(userRepo, postRepo, registry)
	admin.Get("/users", adminH.Users)
	admin.Put("/users/:id/ban", adminH.ToggleBan)
	admin.Get("/stats", adminH.Stats)
	admin.Post("/announce", adminH.Announce)

	// Public feed
	postH := handler.NewPostHandler(postRepo, commentRepo)
	v1.Get("/posts/feed", postH.Feed)
	v1.Get("/posts/:id/comments", postH.ListComments)

	// JWT-protected routes (catch-all — must be LAST)
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret))

	protected.Get("/auth/socket-token", authH.SocketToken)

	userH := handler.NewUserHandler(userRepo)
	protected.Get("/users/me", userH.Me)

	protected.Post("/posts", postH.Create)
	protected.Get("/posts/:id", postH.Get)
	protected.Delete("/posts/:id", postH.Delete)
	protected.Post("/posts/:id/like", postH.Like)
	protected.Post("/posts/:id/comments", postH.AddComment)

	chatH := handler.NewChatHandler(roomRepo, messageRepo)
	chat := protected.Group("/chat")
	chat.Get("/rooms", chatH.ListRooms)
	chat.Post("/rooms", chatH.CreateRoom)
	chat.Get("/rooms/:id/messages", chatH.GetRoomMessages)
	chat.Get("/rooms/:id/members", chatH.GetRoomMembers)

	// WebSocket gateway
	wsH := handler.NewWSHandler(authSvc, chatSvc, registry)
	app.Get("/ws", wsH.Upgrade)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("Conduit backend running on :%s (%s)", cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	_ = app.ShutdownWithTimeout(5 * time.Second)
	log.Println("Server stopped")
}
