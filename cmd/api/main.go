package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hotelcore/internal/config"
	"hotelcore/internal/database"
	"hotelcore/internal/middleware"
	"hotelcore/internal/modules/booking"
	"hotelcore/internal/modules/notification"
	"hotelcore/internal/modules/outbox"
	"hotelcore/internal/modules/roomstate"
	"hotelcore/internal/pkg/dates"
	jwtsvc "hotelcore/internal/pkg/jwt"
	"hotelcore/internal/pkg/logger"
	"hotelcore/internal/pkg/roomlock"
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
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("db migrate failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewStore(db)
	clock := dates.SystemClock{}

	var locker roomlock.Locker = roomlock.NewKeyedMutex()
	if cfg.RedisURL != "" {
		client, err := roomlock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("redis connect failed")
		}
		defer client.Close()
		locker = roomlock.NewRedisLocker(client, cfg.RoomLockTTL)
		log.Info("using redis room locks")
	}

	var publisher outbox.Publisher
	if cfg.RabbitURL != "" {
		p, err := outbox.NewAMQPPublisher(cfg.RabbitURL, cfg.RabbitExchange, log)
		if err != nil {
			log.WithError(err).Fatal("rabbitmq connect failed")
		}
		defer p.Close()
		publisher = p
		log.WithField("exchange", cfg.RabbitExchange).Info("publishing events to rabbitmq")
	}

	hub := notification.NewHub(log)
	defer hub.Close()

	dispatcher := notification.NewDispatcher(store.Notifications(), hub, cfg.NotificationTTL, log)
	relay := outbox.NewRelay(store, dispatcher, publisher, outbox.Config{
		PollInterval:    cfg.OutboxPollInterval,
		BatchSize:       cfg.OutboxBatchSize,
		MaxAttempts:     cfg.OutboxMaxAttempts,
		DeliveryTimeout: cfg.StorageTimeout,
	}, clock, log)

	boundary := roomstate.NewBoundary(store, locker, relay, cfg.StorageTimeout, log)
	synchronizer := roomstate.NewSynchronizer(roomstate.Policy{CleanedStatus: cfg.RoomCleanedStatus}, clock, log)

	roomService := roomstate.NewService(synchronizer, boundary, cfg.StorageTimeout)
	bookingService := booking.NewService(booking.Deps{
		Store:        store,
		Boundary:     boundary,
		Synchronizer: synchronizer,
		Clock:        clock,
		Location:     cfg.HotelLocation,
		AutoConfirm:  cfg.AutoConfirm,
		QueryTimeout: cfg.StorageTimeout,
		Log:          log,
	})
	notificationService := notification.NewService(store.Notifications(), clock, cfg.StorageTimeout, log)
	cleanup := notification.NewCleanupService(store, clock, cfg.OutboxRetention, log)

	tokens := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.ErrorLogger(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1", middleware.JWTAuth(tokens))
	booking.NewHandler(bookingService).RegisterRoutes(v1, limiter.Limit())
	roomstate.NewHandler(roomService).RegisterRoutes(v1)
	notification.NewHandler(notificationService, hub, cfg.CORSAllowedOrigins, log).RegisterRoutes(v1)

	go relay.Run(ctx)
	stopCleanup := cleanup.ScheduleCleanup(ctx, cfg.CleanupInterval)
	defer close(stopCleanup)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("hotel core API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	boundary.Wait()
}
