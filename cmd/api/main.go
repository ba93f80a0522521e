package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/auth"
	"github.com/HardcoreMagazine/selenicspark/internal/background"
	"github.com/HardcoreMagazine/selenicspark/internal/config"
	"github.com/HardcoreMagazine/selenicspark/internal/database"
	"github.com/HardcoreMagazine/selenicspark/internal/handlers"
	"github.com/HardcoreMagazine/selenicspark/internal/markdown"
	middlewareCustom "github.com/HardcoreMagazine/selenicspark/internal/middleware"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/repositories"
	"github.com/HardcoreMagazine/selenicspark/internal/routes"
	"github.com/HardcoreMagazine/selenicspark/internal/services"
	pkgauth "github.com/HardcoreMagazine/selenicspark/pkg/auth"
	pkglogger "github.com/HardcoreMagazine/selenicspark/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	eventRepo := repositories.NewModerationEventRepository(db)
	postRepo := repositories.NewPostRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(eventRepo, logger, cfg.Moderation.CleanupInterval, cfg.Moderation.EventRetention)

	// Token validation for requests signed by the identity front-end
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// The renderer is built once and shared by every request
	renderer := markdown.NewRenderer()

	// Initialize services
	moderationService := services.NewModerationService(userRepo, ledgerRepo, eventRepo, cfg.Moderation.LockoutDuration, logger, auditLogger)
	adminService := services.NewAdminService(userRepo, roleRepo, ledgerRepo, eventRepo, logger, auditLogger)
	postService := services.NewPostService(postRepo, commentRepo, eventRepo, renderer, logger)

	// Initialize handlers
	postHandler := handlers.NewPostHandler(postService, moderationService)
	accountHandler := handlers.NewAccountHandler(moderationService)
	moderationHandler := handlers.NewModerationHandler(moderationService, userRepo)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Seed built-in roles and the bootstrap admin if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := seedRoles(ctx, roleRepo, logger); err != nil {
		logger.Error("failed to seed roles", slog.Any("error", err))
	}
	if err := ensureAdminUser(ctx, userRepo, roleRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, postHandler, accountHandler, moderationHandler, adminHandler, tokenManager, userRepo)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// seedRoles makes sure the built-in roles exist before any request needs them
func seedRoles(ctx context.Context, roleRepo *repositories.RoleRepository, logger *slog.Logger) error {
	for _, name := range models.BuiltinRoles {
		if err := roleRepo.EnsureExists(ctx, name); err != nil {
			return fmt.Errorf("failed to ensure role %q: %w", name, err)
		}
	}

	logger.Info("built-in roles seeded")
	return nil
}

// ensureAdminUser creates the first admin account if ADMIN_USERNAME, ADMIN_EMAIL
// and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, roleRepo *repositories.RoleRepository, logger *slog.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		logger.Info("no bootstrap admin credentials set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := userRepo.GetByUsername(ctx, adminUsername)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Username:       adminUsername,
		Email:          adminEmail,
		PasswordHash:   hashedPassword,
		EmailConfirmed: true,
	}

	created, err := userRepo.Create(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	adminRole, err := roleRepo.GetByName(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to resolve admin role: %w", err)
	}

	if err := userRepo.AddRole(ctx, created.ID, adminRole.ID); err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
