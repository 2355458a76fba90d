package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-service/config"
	"booking-service/internal/auth"
	"booking-service/internal/cache"
	"booking-service/internal/expiry"
	"booking-service/internal/handlers"
	"booking-service/internal/producer"
	"booking-service/internal/repository"
	"booking-service/internal/router"
	"booking-service/internal/service"

	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/database"
	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/logger"

	authv1 "github.com/Anabol1ks/orderhub-pkg-proto/proto/auth/v1"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repo := repository.New(db)

	var (
		availCache service.AvailabilityCache
		limiter    router.RateLimit
	)
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.AvailabilityTTL, log)
		if err != nil {
			log.Warn("redis unavailable, running without cache and rate limits", zap.Error(err))
		} else {
			defer rdb.Close()
			availCache = rdb
			limiter = router.RateLimit{Limiter: rdb, Max: cfg.RateLimit.Max, Window: cfg.RateLimit.Window}
		}
	}

	var bus service.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		kp := producer.NewEmailProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		bus = kp
	} else {
		log.Warn("no kafka brokers configured (KAFKA_BROKERS), lifecycle events are only logged")
		bus = producer.NewLogPublisher(log)
	}
	dispatcher := service.NewDispatcher(bus, log, 0)
	go dispatcher.Run()

	clock := service.SystemClock(cfg.Location)
	tables := service.NewTableStateSync(availCache, log)
	opts := service.ReservationOptions{ExpiryGrace: cfg.Expiry.Grace, ExpiryBatch: cfg.Expiry.Batch}

	availability := service.NewAvailabilityService(repo, availCache, log)
	reservations := service.NewReservationService(repo, tables, dispatcher, clock, opts, log)
	orders := service.NewOrderService(repo, service.NewPricingEngine(repo.Catalog), reservations, tables, dispatcher, clock, log)

	authConn, err := grpc.NewClient(
		cfg.AuthAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		log.Fatal("auth service dial failed", zap.Error(err))
	}
	defer authConn.Close()
	authClient := auth.NewClient(authv1.NewAuthServiceClient(authConn))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := expiry.NewScheduler(reservations, cfg.Expiry.Interval, log)
	sched.Start(ctx)

	r := router.Router(router.Deps{
		Auth:         authClient,
		Reservations: handlers.NewReservationHandler(reservations, availability, clock, log),
		Orders:       handlers.NewOrderHandler(orders, log),
		RateLimit:    limiter,
		Log:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to run http server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	cancel()
	sched.Stop()
	dispatcher.Close()
	log.Info("service stopped")
}
