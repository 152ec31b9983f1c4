package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/Matrix-I/todo-backend/api/handler"
	"github.com/Matrix-I/todo-backend/internal/config"
	"github.com/Matrix-I/todo-backend/internal/infrastructure/monitor"
	pgInfra "github.com/Matrix-I/todo-backend/internal/infrastructure/postgres"
	redisInfra "github.com/Matrix-I/todo-backend/internal/infrastructure/redis"
	"github.com/Matrix-I/todo-backend/internal/middleware"
	"github.com/Matrix-I/todo-backend/internal/router"
	"github.com/Matrix-I/todo-backend/internal/services"
	"github.com/Matrix-I/todo-backend/internal/services/lifecycle"
	"github.com/Matrix-I/todo-backend/pkg/httpcontext"
	"github.com/Matrix-I/todo-backend/pkg/logger"
	boltRepo "github.com/Matrix-I/todo-backend/repository/bolt"
	"github.com/Matrix-I/todo-backend/repository/postgres"
	redisRepo "github.com/Matrix-I/todo-backend/repository/redis"
	authUC "github.com/Matrix-I/todo-backend/usecase/auth"
	reminderUC "github.com/Matrix-I/todo-backend/usecase/reminder"
	taskUC "github.com/Matrix-I/todo-backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.Context(context.Background())
	defer stop()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	ledger, err := boltRepo.Open(cfg.Ledger.Path, cfg.Ledger.Bucket)
	if err != nil {
		zapLogger.Fatal("failed to open reminder ledger", zap.Error(err))
	}
	manager.Register("ledger", func(ctx context.Context) error {
		return ledger.Close()
	})

	mon := monitor.New(pool, redisClient, ledger, cfg.Context.MonitorInterval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	notificationStore := redisRepo.NewNotificationStore(redisClient)

	coordinator := reminderUC.NewCoordinator(notificationStore, ledger, cfg.Reminders.Enabled, zapLogger)

	notifier := services.NewNotifier(notificationStore, mon, zapLogger, services.NotifierConfig{
		Interval: cfg.Reminders.DeliveryInterval,
	})
	notifier.Start()
	manager.Register("notifier", func(ctx context.Context) error {
		notifier.Stop(ctx)
		return nil
	})

	reconciler := services.NewReconciler(coordinator, mon, zapLogger, services.ReconcilerConfig{
		Interval: cfg.Reminders.ReconcileInterval,
	})
	reconciler.Start()
	manager.Register("reconciler", func(ctx context.Context) error {
		reconciler.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(sessionRepo, cfg.JWT.Secret, zapLogger)
	taskUseCase := taskUC.New(taskRepo, coordinator, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Task:     apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Reminder: apiHandler.NewReminderHandler(coordinator, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()
	zapLogger.Info("shutdown signal received")

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
