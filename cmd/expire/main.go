package main

import (
	"context"
	"os"

	"booking-service/config"
	"booking-service/internal/cache"
	"booking-service/internal/expiry"
	"booking-service/internal/producer"
	"booking-service/internal/repository"
	"booking-service/internal/service"

	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/database"
	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// One sweep over overdue reservations, for cron-style deployments.
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	log := logger.L()
	err := run(log)
	if err != nil {
		log.Error("expiry sweep failed", zap.Error(err))
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run owns every resource so its deferred closes finish before main exits.
func run(log *zap.Logger) error {
	cfg := config.LoadWorker(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	var bus service.EventBus = producer.NewLogPublisher(log)
	if len(cfg.Kafka.Brokers) > 0 {
		kp := producer.NewEmailProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		bus = kp
	}

	var availCache service.AvailabilityCache
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.AvailabilityTTL, log)
		if err != nil {
			log.Warn("redis unavailable, cached availability will expire by TTL", zap.Error(err))
		} else {
			defer rdb.Close()
			availCache = rdb
		}
	}

	reservations := service.NewReservationService(
		repository.New(db),
		service.NewTableStateSync(availCache, log),
		bus,
		service.SystemClock(cfg.Location),
		service.ReservationOptions{ExpiryGrace: cfg.Expiry.Grace, ExpiryBatch: cfg.Expiry.Batch},
		log,
	)

	n, err := expiry.NewScheduler(reservations, cfg.Expiry.Interval, log).RunOnceNow(context.Background())
	if err != nil {
		return err
	}
	log.Info("expiry sweep completed", zap.Int("expired", n))
	return nil
}
