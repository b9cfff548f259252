package main

import (
	"context"
	"os"

	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"go.uber.org/zap"

	"readinglog/internal/app"
)

// Runs the application against a throwaway ClickHouse container
func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Error("Development run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	ctx := context.Background()

	logger.Info("Starting ClickHouse testcontainer...")
	container, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:latest",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword("devpassword"),
		clickhouse.WithDatabase("default"),
	)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("Stopping ClickHouse container...")
		if err := container.Terminate(ctx); err != nil {
			logger.Warn("Failed to terminate container", zap.Error(err))
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		return err
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		return err
	}
	logger.Info("ClickHouse started", zap.String("host", host), zap.String("port", port.Port()))

	env := map[string]string{
		"STORAGE_BACKEND":     "clickhouse",
		"CLICKHOUSE_HOST":     host,
		"CLICKHOUSE_PORT":     port.Port(),
		"CLICKHOUSE_DATABASE": "default",
		"CLICKHOUSE_USER":     "default",
		"CLICKHOUSE_PASSWORD": "devpassword",
		"CLICKHOUSE_USE_TLS":  "false",
		"LOG_DEVELOPMENT":     "true",
		"WEBHOOK_MODE":        "false",
	}
	for key, value := range env {
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, running the REST API only")
	}

	application, err := app.New()
	if err != nil {
		return err
	}
	return application.Run()
}
