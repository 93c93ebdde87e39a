package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"userauth/docs" // swagger docs
	"userauth/internal/auth"
	"userauth/internal/cache"
	"userauth/internal/config"
	"userauth/internal/db"
	"userauth/internal/events"
	"userauth/internal/handler"
	"userauth/internal/logging"
	"userauth/internal/migrate"
	"userauth/internal/repository"
	"userauth/internal/router"
	"userauth/internal/service"
)

// @title User Auth API
// @version 1.0
// @description User signup, login and profile management with JWT authentication.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.IsProduction())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(ctx, cfg.MySQLDSN())
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.App.ResetDB {
		logger.Warn("reset_db enabled, rolling back all migrations")
		if err := migrate.Reset(ctx, sqlDB); err != nil {
			return err
		}
	}
	if err := migrate.Up(ctx, sqlDB); err != nil {
		return err
	}
	if version, err := migrate.Version(ctx, sqlDB); err == nil {
		logger.Info("database ready", zap.Int64("schema_version", version))
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, cache and login limiter degrade to no-ops", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(gormDB)

	var publisher events.Publisher = events.NopPublisher{}
	var amqpConn *amqp.Connection
	if cfg.RabbitMQ.URL != "" {
		amqpConn, err = events.Dial(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		defer amqpConn.Close()
		publisher = events.NewAMQPPublisher(amqpConn, cfg.RabbitMQ.EventsQueue)

		worker := events.NewAuditWorker(amqpConn, repository.NewUserEventRepository(gormDB), cfg.RabbitMQ.EventsQueue, logger)
		if err := worker.Start(ctx); err != nil {
			return err
		}
		defer worker.Close()
	} else {
		logger.Info("rabbitmq not configured, user events are dropped")
	}

	hasher, err := auth.NewHasher(cfg.Auth.HashAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.App.Name, cfg.TokenTTL())
	limiter := auth.NewRedisLimiter(cacheClient, cfg.Auth.LoginMaxFailures, cfg.LoginLockout())

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithEventPublisher(publisher),
		service.WithUserCacheTTL(cfg.UserCacheTTL()),
	}
	authService := service.NewAuthService(userRepo, hasher, jwtService,
		append(opts,
			service.WithLoginLimiter(limiter),
			service.WithUnifiedLoginErrors(cfg.Auth.UnifyLoginErrors),
		)...,
	)
	userService := service.NewUserService(userRepo, cacheClient, opts...)

	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"mysql":    func(ctx context.Context) error { return db.Ping(ctx, gormDB) },
		"redis":    cacheClient.Ping,
		"rabbitmq": amqpCheck(amqpConn),
	})

	if cfg.Swagger.Host != "" {
		docs.SwaggerInfo.Host = cfg.Swagger.Host
	}

	e := echo.New()
	router.Register(e, router.Deps{
		Logger:        logger,
		Issuer:        jwtService,
		AuthHandler:   handler.NewAuthHandler(authService, userService),
		UserHandler:   handler.NewUserHandler(userService),
		HealthHandler: healthHandler,
		EnableSwagger: cfg.Swagger.Enabled,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr()))
		if err := e.Start(cfg.HTTPAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// amqpCheck reports the broker connection state; nil disables the check.
func amqpCheck(conn *amqp.Connection) handler.HealthCheck {
	if conn == nil {
		return nil
	}
	return func(context.Context) error {
		if conn.IsClosed() {
			return amqp.ErrClosed
		}
		return nil
	}
}
