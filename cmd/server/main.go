package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/internal/database"
	"github.com/gatherly/gatherly/internal/handlers"
	"github.com/gatherly/gatherly/internal/logging"
	"github.com/gatherly/gatherly/internal/middleware"
	"github.com/gatherly/gatherly/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	// Initialize logger
	logger := logging.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Environment == "development" {
		logger.SetLevel(logging.LevelDebug)
	}

	logger.Info("Starting Gatherly server...")

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), cfg.Server.MigrationsPath)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	// Connect to Redis
	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Chat provider
	var provider services.ChatProvider
	switch cfg.Chat.Provider {
	case "stream":
		provider, err = services.NewStreamProvider(&cfg.Chat)
		if err != nil {
			return fmt.Errorf("configuring chat provider: %w", err)
		}
	default:
		provider = services.NewConsoleProvider(logger)
	}
	logger.Info("Chat provider configured", map[string]interface{}{
		"provider": cfg.Chat.Provider,
	})

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(userService, redisDB.Client)
	chatService := services.NewChatService(provider)
	friendService := services.NewFriendService(dbAdapter)
	groupService := services.NewGroupService(dbAdapter, chatService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, cfg.Server.Secure)
	friendHandler := handlers.NewFriendHandler(friendService, chatService)
	groupHandler := handlers.NewGroupHandler(groupService)
	chatHandler := handlers.NewChatHandler(chatService, cfg.Chat.APIKey)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	cors := middleware.NewCORS(cfg.Server.AllowedOrigin)
	requestLogger := middleware.NewRequestLogger(logger)
	authRateLimiter := middleware.NewAuthRateLimiter(redisDB.Client)

	requireAuth := authMiddleware.RequireAuth

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints
	mux.Handle("POST /api/auth/register", authRateLimiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authRateLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /api/auth/onboard", requireAuth(http.HandlerFunc(authHandler.Onboard)))

	// Friend endpoints
	mux.Handle("GET /api/friends/my-friends", requireAuth(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("GET /api/friends/recommended", requireAuth(http.HandlerFunc(friendHandler.ListRecommended)))
	mux.Handle("DELETE /api/friends/unfriend/{friendId}", requireAuth(http.HandlerFunc(friendHandler.Unfriend)))
	mux.Handle("POST /api/friend-requests/send/{userId}", requireAuth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("POST /api/friend-requests/accept/{id}", requireAuth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("POST /api/friend-requests/decline/{id}", requireAuth(http.HandlerFunc(friendHandler.DeclineRequest)))
	mux.Handle("DELETE /api/friend-requests/cancel/{id}", requireAuth(http.HandlerFunc(friendHandler.CancelRequest)))
	mux.Handle("GET /api/friend-requests/requests", requireAuth(http.HandlerFunc(friendHandler.ListRequests)))
	mux.Handle("GET /api/friend-requests/requests/outgoing", requireAuth(http.HandlerFunc(friendHandler.ListOutgoingRequests)))

	// Group endpoints
	mux.Handle("POST /api/groups", requireAuth(http.HandlerFunc(groupHandler.Create)))
	mux.Handle("POST /api/groups/join", requireAuth(http.HandlerFunc(groupHandler.Join)))
	mux.Handle("GET /api/groups/my-groups", requireAuth(http.HandlerFunc(groupHandler.MyGroups)))
	mux.Handle("GET /api/groups/{id}", requireAuth(http.HandlerFunc(groupHandler.Details)))
	mux.Handle("DELETE /api/groups/{id}/leave", requireAuth(http.HandlerFunc(groupHandler.Leave)))

	// Chat provisioning endpoints
	mux.Handle("POST /api/chat/token", requireAuth(http.HandlerFunc(chatHandler.Token)))
	mux.Handle("POST /api/chat/upsert-members", requireAuth(http.HandlerFunc(chatHandler.UpsertMembers)))
	mux.Handle("POST /api/chat/ensure-pm-channel", requireAuth(http.HandlerFunc(chatHandler.EnsurePMChannel)))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = cors.Apply(handler)
	handler = requestLogger.Apply(handler)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
