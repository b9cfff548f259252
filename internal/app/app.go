package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"readinglog/internal/api"
	"readinglog/internal/bot"
	"readinglog/internal/catalog"
	"readinglog/internal/clock"
	"readinglog/internal/config"
	"readinglog/internal/readingsession"
	"readinglog/internal/storage"
	"readinglog/internal/storage/ch"
	"readinglog/internal/storage/sqlite"
	"readinglog/internal/storage/stubs"
)

// App represents the application
type App struct {
	config *config.Config
	logger *zap.Logger
	db     storage.Storage
	bot    *bot.Bot
	server *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.LogDevelopment)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if envErr != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	app := &App{config: cfg, logger: logger}
	logger.Info("Starting reading log", zap.String("storage_backend", cfg.StorageBackend))

	db, err := newStorage(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("Database initialized successfully")
	app.db = db

	books := catalog.New(db, logger.Named("catalog"))
	sessions := readingsession.NewService(books, readingsession.NewRecordStore(db), clock.System{Location: cfg.Location}, logger.Named("readingsession"))

	if cfg.BotEnabled() {
		telegramBot, err := bot.NewBot(cfg.TelegramToken, books, sessions, clock.System{Location: cfg.Location}, cfg.AllowedUserIDs, logger.Named("bot"))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
		}
		logger.Info("Bot enabled", zap.Int64s("allowed_users", cfg.AllowedUserIDs))
		app.bot = telegramBot
	}

	app.initHTTPServer(api.NewHandler(books, sessions, logger.Named("api")))
	return app, nil
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	gin.SetMode(gin.ReleaseMode)
	return zap.NewProduction()
}

// newStorage opens the configured storage backend
func newStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Info("Using in-memory database")
		return stubs.NewMockDB(), nil

	case config.BackendSQLite:
		logger.Info("Opening SQLite database", zap.String("path", cfg.SQLitePath))
		db, err := sqlite.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		return db, nil

	case config.BackendClickHouse:
		logger.Info("Connecting to ClickHouse",
			zap.String("host", cfg.ClickHouseHost),
			zap.Int("port", cfg.ClickHousePort),
			zap.String("database", cfg.ClickHouseDatabase),
			zap.String("user", cfg.ClickHouseUser),
			zap.Bool("tls", cfg.ClickHouseUseTLS),
		)
		db, err := ch.NewClickHouseDB(
			cfg.ClickHouseHost,
			cfg.ClickHousePort,
			cfg.ClickHouseDatabase,
			cfg.ClickHouseUser,
			cfg.ClickHousePassword,
			cfg.ClickHouseUseTLS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// initHTTPServer serves the REST API and, in webhook mode, Telegram updates
func (a *App) initHTTPServer(handler *api.Handler) {
	router := handler.Router()
	if a.bot != nil && a.config.WebhookMode {
		router.POST(bot.WebhookPath, a.handleWebhook)
	}

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

func (a *App) handleWebhook(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		a.logger.Warn("Error decoding webhook update", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	// Process update in background to respond quickly to Telegram
	go a.bot.HandleWebhookUpdate(update)
	c.Status(http.StatusOK)
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if a.bot != nil {
		if a.config.WebhookMode {
			if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
				a.Shutdown()
				return fmt.Errorf("failed to setup webhook: %w", err)
			}
			a.logger.Info("Webhook configured", zap.String("path", bot.WebhookPath))
		} else {
			go func() {
				if err := a.bot.Start(); err != nil {
					a.logger.Error("Bot stopped", zap.Error(err))
				}
			}()
		}
	}

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down...")
	case err := <-serverErr:
		a.logger.Error("HTTP server error", zap.Error(err))
		a.Shutdown()
		return err
	}
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	if a.bot != nil {
		a.bot.Stop()
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return nil
}
