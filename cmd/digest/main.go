// The digest job re-derives time-based alerts (medicine expiry, stale
// pending prescriptions) and sends the daily summary to the pharmacy
// channel. Run it from cron; it does one pass and exits.
package main

import (
	"context"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmacore/pharmacy-api/internal/alert/deriver"
	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	alertRepository "github.com/pharmacore/pharmacy-api/internal/alert/repository"
	medicinedomain "github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	medicineRepository "github.com/pharmacore/pharmacy-api/internal/medicine/repository"
	"github.com/pharmacore/pharmacy-api/internal/notification"
	"github.com/pharmacore/pharmacy-api/internal/notification/telegram"
	presdomain "github.com/pharmacore/pharmacy-api/internal/prescription/domain"
	prescriptionRepository "github.com/pharmacore/pharmacy-api/internal/prescription/repository"
	"github.com/pharmacore/pharmacy-api/pkg/database"
	"github.com/pharmacore/pharmacy-api/pkg/logger"
)

func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "pharmacy-digest")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().Msg("Starting alert digest job")

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
		logger.Logger.Warn().Msg("Telegram bot token not set - digest will not be delivered")
	}

	alertRepo := alertRepository.NewGormAlertRepository(db)
	prefRepo := alertRepository.NewGormPreferenceRepository(db)
	medicineRepo := medicineRepository.NewGormMedicineRepository(db)
	prescriptionRepo := prescriptionRepository.NewGormPrescriptionRepository(db)

	dispatcher := notification.NewDispatcher(tgClient, prefRepo, nil)
	alertDeriver := deriver.New(alertRepo)
	transactor := database.NewTransactor(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created := deriveMedicineAlerts(ctx, transactor, medicineRepo, alertDeriver)
	created = append(created, derivePrescriptionAlerts(ctx, transactor, prescriptionRepo, alertDeriver)...)

	// The job exits after this pass, so deliver synchronously instead of
	// the fire-and-forget batch path the API uses.
	for i := range created {
		dispatcher.Dispatch(ctx, &created[i])
	}
	logger.Logger.Info().Int("alerts_created", len(created)).Msg("Alert re-derivation finished")

	sendDigest(ctx, alertRepo, tgClient)
}

// deriveMedicineAlerts re-runs the stock and expiry rules over every
// active medicine, each in its own transaction with the medicine row
// locked so concurrent adjustments serialize with the derivation.
func deriveMedicineAlerts(
	ctx context.Context,
	transactor database.Transactor,
	medicines *medicineRepository.GormMedicineRepository,
	alertDeriver *deriver.Deriver,
) []alertdomain.AlertLog {
	active, err := medicines.FindActive(ctx)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list active medicines")
		return nil
	}

	var created []alertdomain.AlertLog
	for _, m := range active {
		err := transactor.Transaction(ctx, func(tx *gorm.DB) error {
			var locked medicinedomain.Medicine
			if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, m.ID).Error; err != nil {
				return err
			}
			alerts, err := alertDeriver.MedicineAlerts(ctx, tx, &locked)
			if err != nil {
				return err
			}
			created = append(created, alerts...)
			return nil
		})
		if err != nil {
			logger.Logger.Error().Err(err).Uint("medicine_id", m.ID).Msg("Failed to derive medicine alerts")
		}
	}
	return created
}

// derivePrescriptionAlerts raises PRESCRIPTION_PENDING for prescriptions
// that sat PENDING beyond the age threshold.
func derivePrescriptionAlerts(
	ctx context.Context,
	transactor database.Transactor,
	prescriptions presdomain.Repository,
	alertDeriver *deriver.Deriver,
) []alertdomain.AlertLog {
	stale, err := prescriptions.PendingOlderThan(ctx, deriver.PendingAlertAge)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list stale pending prescriptions")
		return nil
	}

	var created []alertdomain.AlertLog
	for i := range stale {
		p := &stale[i]
		err := transactor.Transaction(ctx, func(tx *gorm.DB) error {
			locked, err := prescriptions.WithTx(tx).FindByIDForUpdate(ctx, p.ID)
			if err != nil {
				return err
			}
			alerts, err := alertDeriver.PrescriptionAlerts(ctx, tx, locked, false)
			if err != nil {
				return err
			}
			created = append(created, alerts...)
			return nil
		})
		if err != nil {
			logger.Logger.Error().Err(err).Uint("prescription_id", p.ID).Msg("Failed to derive prescription alerts")
		}
	}
	return created
}

func sendDigest(ctx context.Context, alertRepo alertdomain.Repository, tgClient *telegram.Client) {
	builder := notification.NewDigestBuilder(alertRepo)
	message, count, err := builder.Build(ctx)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to build digest")
	}

	if err := tgClient.SendMessage(ctx, tgClient.ChannelChatID(), message); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to send digest")
		return
	}
	logger.Logger.Info().Int("unresolved_alerts", count).Msg("Daily digest sent")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
