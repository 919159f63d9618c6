package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	alertRepository "github.com/pharmacore/pharmacy-api/internal/alert/repository"
	alertQuery "github.com/pharmacore/pharmacy-api/internal/alert/usecase/query"
	"github.com/pharmacore/pharmacy-api/internal/notification/delivery/webhook"
	"github.com/pharmacore/pharmacy-api/internal/notification/telegram"
	"github.com/pharmacore/pharmacy-api/pkg/database"
	"github.com/pharmacore/pharmacy-api/pkg/logger"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "pharmacy-bot")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().Str("service", serviceName).Msg("Starting telegram bot server")

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "pharmacydb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	tgClient := telegram.NewClient(getEnv("TELEGRAM_BOT_TOKEN", ""), getEnv("TELEGRAM_CHAT_ID", ""))
	if !tgClient.Configured() {
		logger.Logger.Warn().Msg("Telegram bot token not set - replies will be dropped")
	}

	alertRepo := alertRepository.NewGormAlertRepository(db)
	handler := webhook.NewHandler(
		tgClient,
		alertQuery.NewListAlertsHandler(alertRepo),
		alertQuery.NewAlertStatsHandler(alertRepo, nil),
	)

	app := fiber.New(fiber.Config{
		AppName:      "Pharmacy Bot",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	handler.RegisterRoutes(app)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	go func() {
		port := getEnv("BOT_PORT", "8081")
		if err := app.Listen(":" + port); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start bot server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down bot server...")
	if err := app.Shutdown(); err != nil {
		logger.Logger.Error().Err(err).Msg("Bot server forced to shutdown")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
