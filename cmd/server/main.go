package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/regioninvest/portal/internal/config"
	"github.com/regioninvest/portal/internal/handler"
	"github.com/regioninvest/portal/internal/push"
	"github.com/regioninvest/portal/internal/repository"
	"github.com/regioninvest/portal/internal/service"
	"github.com/regioninvest/portal/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var deliverer service.Deliverer
	if cfg.TelegramBotToken != "" {
		client := push.NewTelegramClient(cfg.TelegramBotToken, cfg.PushTimeout)
		queue := push.NewQueue(client, userRepo, cfg.PushQueueSize, cfg.PushTimeout)
		defer queue.Close()
		deliverer = queue
	} else {
		slog.Warn("TELEGRAM_BOT_TOKEN not set, external push disabled")
	}

	fileStore, err := storage.New(context.Background(), storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		UseSSL:    cfg.StorageUseSSL,
	})
	if err != nil {
		return fmt.Errorf("connect file storage: %w", err)
	}

	notifier := service.NewNotifier(notificationRepo, deliverer)
	taskSvc := service.NewTaskService(taskRepo, notifier)
	completionSvc := service.NewCompletionService(taskSvc, completionRepo, userRepo, notifier, cfg.CompletionRequireEvidence)
	notificationSvc := service.NewNotificationService(notificationRepo)
	overdueSvc := service.NewOverdueService(taskRepo, projectRepo, notificationRepo, notifier)

	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		JWTSecret:          cfg.JWTSecret,
		FrontendURL:        cfg.FrontendURL,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	taskHandler := handler.NewTaskHandler(taskSvc, completionSvc)
	completionHandler := handler.NewCompletionHandler(completionSvc, fileStore, cfg.MaxAttachmentBytes)
	projectHandler := handler.NewProjectHandler(projectRepo)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	adminHandler := handler.NewAdminHandler(overdueSvc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewAppValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.GET("/google", authHandler.GoogleRedirect)
	auth.GET("/google/callback", authHandler.GoogleCallback)
	auth.POST("/refresh", authHandler.Refresh)

	protected := api.Group("", handler.JWTAuth(authSvc))
	protected.GET("/auth/me", authHandler.Me)

	protected.POST("/tasks", taskHandler.Create)
	protected.GET("/tasks/:id", taskHandler.Get)
	protected.GET("/projects", projectHandler.ListMine)
	protected.GET("/projects/:id/tasks", taskHandler.ListByProject)
	protected.POST("/tasks/:id/completions", completionHandler.Submit)
	protected.POST("/tasks/:id/completions/:cid/review", completionHandler.Review)

	protected.GET("/notifications", notificationHandler.List)
	protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
	protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)

	admin := protected.Group("/admin", handler.RequireSuperadmin())
	admin.POST("/overdue-sweep", adminHandler.RunOverdueSweep)

	scheduler := gocron.NewScheduler(time.Local)
	_, err = scheduler.Every(1).Day().At(cfg.SweepAt).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := overdueSvc.Run(ctx); err != nil {
			slog.Error("scheduled overdue sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule overdue sweep: %w", err)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
