package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cineticket/cineticket-api/internal/config"
	"github.com/cineticket/cineticket-api/internal/database"
	"github.com/cineticket/cineticket-api/internal/handler"
	"github.com/cineticket/cineticket-api/internal/middleware"
	"github.com/cineticket/cineticket-api/internal/queue"
	"github.com/cineticket/cineticket-api/internal/repository"
	"github.com/cineticket/cineticket-api/internal/router"
	"github.com/cineticket/cineticket-api/internal/service"
	"github.com/cineticket/cineticket-api/internal/worker"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("could not read .env")
	}

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg := config.Load()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	bookingCfg := config.LoadBookingConfig()

	// Money is rendered as JSON numbers, e.g. "totalAmount": 200000.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Info("schema applied")
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	cinemas := repository.NewCinemaRepo(db)
	halls := repository.NewHallRepo(db)
	seats := repository.NewSeatRepo(db)
	screenings := repository.NewScreeningRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	var events service.EventPublisher
	consumerDone := make(chan struct{})
	if cfg.RabbitURL != "" {
		pub := queue.NewPublisher(cfg.RabbitURL, log)
		defer pub.Close()
		events = pub
		consumer := &queue.Consumer{URL: cfg.RabbitURL, LogDir: cfg.EventLogDir, Log: log}
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("booking consumer stopped")
			}
		}()
		log.Info("booking events enabled")
	} else {
		close(consumerDone)
		log.Warn("RABBITMQ_URL not set, booking events disabled")
	}

	// services
	bookingSvc := service.NewBookingService(screenings, seats, bookings, events, service.BookingOptions{
		MaxSeats:   bookingCfg.MaxSeatsPerBooking,
		PendingTTL: bookingCfg.PendingTTL,
		BatchSize:  bookingCfg.ExpiryBatchSize,
		Log:        log,
	})
	catalogSvc := service.NewCatalogService(movies, cinemas, halls, seats, screenings, nil, log)
	reviewSvc := service.NewReviewService(reviews, movies)

	sched := worker.NewScheduler(log)
	if err := sched.Add("booking_expiry", bookingCfg.ExpirySchedule, bookingSvc.ExpirePending); err != nil {
		log.Fatalf("expiry schedule %q: %v", bookingCfg.ExpirySchedule, err)
	}
	if err := sched.Add("refresh_token_purge", bookingCfg.TokenPurgeSchedule, func(ctx context.Context) (int, error) {
		return tokens.PurgeExpired(ctx, time.Now().UTC())
	}); err != nil {
		log.Fatalf("token purge schedule %q: %v", bookingCfg.TokenPurgeSchedule, err)
	}
	sched.Start()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.RequestLogger(log))

	cacheCfg := config.LoadCacheConfig()
	checks := map[string]handler.Check{"mysql": db.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	bookingH := handler.NewBookingHandler(bookingSvc, log)
	reviewH := handler.NewReviewHandler(reviewSvc, log)
	router.RegisterRoutes(e, checks)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, log), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewCatalogHandler(catalogSvc, log), bookingH, reviewH,
		middleware.NewRedisCache(cacheCfg, rdb, log))
	router.RegisterCustomer(e, bookingH, reviewH, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))
	router.RegisterAdmin(e, handler.NewAdminHandler(catalogSvc, log), cfg.JWTSecret,
		middleware.PurgeCacheOnSuccess(cacheCfg, rdb, log))

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	sched.Stop(ctx)
	stop()
	select {
	case <-consumerDone:
	case <-ctx.Done():
	}
}
