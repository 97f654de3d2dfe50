package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duong122/Linkly/internal/chat"
	"github.com/duong122/Linkly/internal/config"
	"github.com/duong122/Linkly/internal/db"
	myMiddleware "github.com/duong122/Linkly/internal/middleware"
	"github.com/duong122/Linkly/internal/user"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("zap: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	// Platform layer: postgres + redis.
	database, err := db.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalf("Failed to connect to postgres: %v", err)
	}
	if err := database.AutoMigrate(); err != nil {
		sugar.Fatalf("Migration failed: %v", err)
	}
	sugar.Info("Connected to postgres, schema initialized")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		sugar.Fatalf("Failed to connect to redis: %v", err)
	}
	sugar.Info("Connected to redis")

	// User feature.
	userRepo := user.NewRepository(database.Conn)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService, sugar)

	// Delivery core.
	presence := chat.NewPresence(redisClient, cfg.PresenceTTL, sugar)
	directory := chat.NewDirectory(presence, sugar)
	chatRepo := chat.NewRepository(database.Conn, sugar)
	router := chat.NewRouter(chatRepo, directory, sugar)
	chatHandler := chat.NewHandler(router, directory, chatRepo, presence, sugar)

	authMiddleware := myMiddleware.NewAuthMiddleware(userService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Public routes.
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Protected routes.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Handle)
		r.Get("/api/users/me", userHandler.Me)
		r.Get("/api/users/search", userHandler.SearchUsers)
		r.Get("/api/messages", chatHandler.GetHistory)
		r.Get("/api/messages/conversations", chatHandler.GetConversations)
		r.Get("/api/presence/{id}", chatHandler.GetPresence)
		r.Get("/ws", chatHandler.ServeWs)
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		sugar.Info("Shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			sugar.Errorf("httpServer.Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	sugar.Infof("Server starting on %s", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		sugar.Fatalf("ListenAndServe: %v", err)
	}

	<-idleConnsClosed
	database.Close()
	redisClient.Close()
	sugar.Info("Server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
