package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/store"
)

func main() {
	// Structured logging (JSON to stdout) until the config is known
	logging.Setup("info")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if cfg.AuthMode == config.AuthModeLegacy {
		slog.Warn("AUTH_MODE=legacy: passwords are stored as base64 and tokens are unsigned")
	}

	// Database (postgres backend only)
	var (
		db        *gorm.DB
		ping      func() error
		dbHandler *logging.DBHandler
		retention *logging.Retention
	)
	if cfg.StoreBackend == config.BackendPostgres {
		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		ping = func() error { return database.Ping(db) }

		// ERROR+ records also go to system_logs
		dbHandler = logging.NewDBHandler(db, 5*time.Second)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewJSONHandler(os.Stdout, cfg.LogLevel),
			dbHandler,
		)))

		retention = logging.NewRetention(db, cfg.LogRetentionDays)
		if err := retention.Start(); err != nil {
			slog.Error("log retention not scheduled", "error", err)
		}
	}

	// Data store
	persister, err := store.OpenPersister(cfg, db)
	if err != nil {
		slog.Error("failed to open store backend", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	st, err := store.New(persister)
	if err != nil {
		slog.Error("failed to load data store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	var ids repository.IDGenerator = repository.TimestampIDs{}
	if cfg.IDScheme == config.IDSchemeUUID {
		ids = repository.UUIDIDs{}
	}
	repos := repository.New(st, ids)

	// Auth
	hasher, tokens := services.NewCredentials(cfg)
	authService := services.NewAuthService(repos.Users, session.NewMemoryStorage(), hasher, tokens)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(metrics.Middleware())

	routes.Setup(app, routes.Deps{
		Config:       cfg,
		Store:        st,
		Repositories: repos,
		AuthService:  authService,
		Ping:         ping,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.ListenAddr(), "backend", cfg.StoreBackend, "auth_mode", cfg.AuthMode)
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := st.Close(); err != nil {
		slog.Error("data store close error", "error", err)
	}

	if retention != nil {
		retention.Stop()
	}
	if dbHandler != nil {
		dbHandler.Stop()
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	sentry.Flush(2 * time.Second)
	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose details for client errors
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
