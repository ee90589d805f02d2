package main

import (
	"log"
	"os"

	"updoot/internal/db"
	"updoot/internal/handlers"
	"updoot/internal/kv"
	"updoot/internal/middleware"
	"updoot/internal/repositories"
	"updoot/internal/router"
	"updoot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	conn := db.Init()
	rdb := kv.Init()

	// Repositories
	userRepo := repositories.NewGORMUserRepository(conn)
	postRepo := repositories.NewGORMPostRepository(conn)
	updootRepo := repositories.NewGORMUpdootRepository(conn)

	// Services
	mailService := services.NewMailService(logger)
	authService := services.NewAuthService(userRepo, rdb, mailService, logger)
	voteService := services.NewVoteService(updootRepo, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postRepo)
	voteHandler := handlers.NewVoteHandler(voteService, postRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AccessLog(logger))

	// Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("updoot_session", store))

	r.Use(middleware.LoadUser(userRepo))
	// Fresh batch loaders for every request.
	r.Use(middleware.WithLoaders(userRepo, updootRepo))

	router.RegisterRoutes(r, authHandler, postHandler, voteHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Infof("updoot server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
