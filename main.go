package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	v1 "github.com/studio-desk/api/v1"
	"github.com/studio-desk/config"
	"github.com/studio-desk/database"
	"github.com/studio-desk/lib/events"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/middleware"
	"github.com/studio-desk/monitoring"
	"github.com/studio-desk/services"
	"github.com/studio-desk/utils"
)

func main() {
	cfg, err := config.Load(config.GetEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if err := utils.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release); err != nil {
		logger.Warn("Sentry disabled", zap.Error(err))
	}
	defer utils.FlushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	rdb := connectRedis(ctx, cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	publisher := connectBroker(cfg, logger)
	defer publisher.Close()

	svc := services.New(services.Options{
		DB:         db,
		Cache:      querycache.New(rdb, cfg.CacheTTL, nil, logger),
		Publisher:  publisher,
		Logger:     logger,
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
	})
	defer svc.Close()

	if cfg.IsLocal() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.ErrorReporter())
	router.Use(middleware.PrometheusMetrics())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.IdempotencyHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(monitoring.Handler()))

	var guard middleware.OnceAcquirer
	if rdb != nil {
		guard = utils.NewDeduper(rdb, cfg.IdempotencyTTL, logger)
	}
	v1.RegisterRoutes(router.Group("/api/v1"), v1.Dependencies{
		Services:      svc,
		DB:            db,
		Redis:         rdb,
		Publisher:     publisher,
		Guard:         guard,
		Logger:        logger,
		Version:       cfg.Release,
		SecureCookies: !cfg.IsLocal(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Studio desk API starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsLocal() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger.With(zap.String("service", "studio-desk"))
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// query cache and duplicate guard then pass straight through.
func connectRedis(ctx context.Context, cfg config.Config, logger *zap.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Info("Redis not configured, query cache disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, query cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return rdb
}

func connectBroker(cfg config.Config, logger *zap.Logger) events.Publisher {
	if cfg.MQ.URL == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.NewAMQPPublisher(cfg.MQ.URL)
	if err != nil {
		logger.Warn("Message broker unreachable, events will not be published", zap.Error(err))
		return events.NopPublisher{}
	}
	logger.Info("Connected to message broker")
	return publisher
}
