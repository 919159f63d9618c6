package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	alertDelivery "github.com/pharmacore/pharmacy-api/internal/alert/delivery/http"
	"github.com/pharmacore/pharmacy-api/internal/alert/deriver"
	alertRepository "github.com/pharmacore/pharmacy-api/internal/alert/repository"
	alertCommand "github.com/pharmacore/pharmacy-api/internal/alert/usecase/command"
	alertQuery "github.com/pharmacore/pharmacy-api/internal/alert/usecase/query"
	medicineDelivery "github.com/pharmacore/pharmacy-api/internal/medicine/delivery/http"
	medicineRepository "github.com/pharmacore/pharmacy-api/internal/medicine/repository"
	"github.com/pharmacore/pharmacy-api/internal/notification"
	"github.com/pharmacore/pharmacy-api/internal/notification/telegram"
	prescriptionDelivery "github.com/pharmacore/pharmacy-api/internal/prescription/delivery/http"
	prescriptionRepository "github.com/pharmacore/pharmacy-api/internal/prescription/repository"
	prescriptionCommand "github.com/pharmacore/pharmacy-api/internal/prescription/usecase/command"
	prescriptionQuery "github.com/pharmacore/pharmacy-api/internal/prescription/usecase/query"
	userDelivery "github.com/pharmacore/pharmacy-api/internal/user/delivery/http"
	userRepository "github.com/pharmacore/pharmacy-api/internal/user/repository"
	"github.com/pharmacore/pharmacy-api/kafka"
	"github.com/pharmacore/pharmacy-api/pkg/database"
	"github.com/pharmacore/pharmacy-api/pkg/logger"
	"github.com/pharmacore/pharmacy-api/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "pharmacy-api")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Msg("Starting pharmacy API")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "pharmacydb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Plain connection for health checks
	sqlDB, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open health check connection")
	}
	defer sqlDB.Close()

	// Repositories
	userRepo := userRepository.NewGormUserRepository(db)
	medicineGorm := medicineRepository.NewGormMedicineRepository(db)
	medicineRepo := medicineRepository.NewMedicineRepositoryWithTracing(medicineGorm)
	supplierRepo := medicineRepository.NewGormSupplierRepository(db)
	patientRepo := medicineRepository.NewGormPatientRepository(db)
	prescriptionRepo := prescriptionRepository.NewGormPrescriptionRepository(db)
	alertRepo := alertRepository.NewGormAlertRepository(db)
	prefRepo := alertRepository.NewGormPreferenceRepository(db)

	// Run migrations
	runMigrations(
		userRepo.AutoMigrate,
		medicineGorm.AutoMigrate,
		prescriptionRepo.AutoMigrate,
		alertRepo.AutoMigrate,
	)
	logger.Logger.Info().Msg("Database initialized successfully")

	// Optional kafka publisher
	var publisher *kafka.Publisher
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		publisher, err = kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to connect to Kafka - events disabled")
		} else {
			defer publisher.Close()
			logger.Logger.Info().Str("brokers", brokers).Msg("Kafka publisher connected")
		}
	}

	// Optional redis cache for alert stats
	var redisClient *redis.Client
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Warn().Err(err).Str("redis_addr", addr).Msg("Failed to connect to Redis - stats caching disabled")
			redisClient = nil
		} else {
			logger.Logger.Info().Str("redis_addr", addr).Msg("Connected to Redis")
		}
	}

	// Notification fan-out
	tgClient := telegram.NewClient(getEnv("TELEGRAM_BOT_TOKEN", ""), getEnv("TELEGRAM_CHAT_ID", ""))
	if !tgClient.Configured() {
		logger.Logger.Warn().Msg("Telegram bot token not set - notifications disabled")
	}
	dispatcher := notification.NewDispatcher(tgClient, prefRepo, publisher)

	// Alert derivation and the stock ledger
	alertDeriver := deriver.New(alertRepo)
	ledger := medicineRepository.NewStockLedger(db, alertDeriver, dispatcher, publisher)
	transactor := database.NewTransactor(db)

	// Handlers
	userHandler := userDelivery.NewUserHandler(userRepo)
	medicineHandler := medicineDelivery.NewMedicineHandler(medicineRepo, supplierRepo, ledger)
	supplierHandler := medicineDelivery.NewSupplierHandler(supplierRepo)
	patientHandler := medicineDelivery.NewPatientHandler(patientRepo)
	prescriptionHandler := prescriptionDelivery.NewPrescriptionHandler(
		prescriptionCommand.NewCreatePrescriptionHandler(transactor, prescriptionRepo, patientRepo, medicineRepo, alertDeriver, dispatcher),
		prescriptionCommand.NewFulfillPrescriptionHandler(transactor, prescriptionRepo, ledger),
		prescriptionCommand.NewCancelPrescriptionHandler(transactor, prescriptionRepo),
		prescriptionCommand.NewReplaceLinesHandler(transactor, prescriptionRepo),
		prescriptionQuery.NewGetPrescriptionHandler(prescriptionRepo),
		prescriptionQuery.NewListPrescriptionsHandler(prescriptionRepo),
		prescriptionQuery.NewPrescriptionStatsHandler(prescriptionRepo),
	)
	alertHandler := alertDelivery.NewAlertHandler(
		alertCommand.NewResolveAlertHandler(alertRepo),
		alertCommand.NewBulkResolveAlertsHandler(alertRepo),
		alertCommand.NewUpdatePreferenceHandler(prefRepo),
		alertQuery.NewGetAlertHandler(alertRepo),
		alertQuery.NewListAlertsHandler(alertRepo),
		alertQuery.NewAlertStatsHandler(alertRepo, redisClient),
		prefRepo,
	)

	// Router
	router := mux.NewRouter()
	userHandler.RegisterRoutes(router)
	userHandler.RegisterHealthCheck(router, sqlDB)
	medicineHandler.RegisterRoutes(router)
	supplierHandler.RegisterRoutes(router)
	patientHandler.RegisterRoutes(router)
	prescriptionHandler.RegisterRoutes(router)
	alertHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ALLOWED_ORIGINS", "*")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := otelhttp.NewHandler(c.Handler(router), "pharmacy-api")

	httpPort := getEnv("HTTP_PORT", "8080")
	server := &http.Server{
		Addr:    ":" + httpPort,
		Handler: handler,
	}

	go func() {
		logger.Logger.Info().
			Str("port", httpPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}

func runMigrations(migrations ...func() error) {
	for _, migrate := range migrations {
		if err := migrate(); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
