// Command cleanup runs one purge of expired notifications and delivered
// outbox events, for use from cron alongside the API's own schedule.
package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hotelcore/internal/config"
	"hotelcore/internal/database"
	"hotelcore/internal/modules/notification"
	"hotelcore/internal/pkg/dates"
	"hotelcore/internal/pkg/logger"
	"hotelcore/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StorageTimeout*6)
	defer cancel()

	svc := notification.NewCleanupService(repository.NewStore(db), dates.SystemClock{}, cfg.OutboxRetention, log)
	if _, err := svc.RunOnce(ctx); err != nil {
		log.WithError(err).Fatal("cleanup failed")
	}
}
