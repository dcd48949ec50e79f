package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-origination/internal/api"
	"loan-origination/internal/api/middleware"
	"loan-origination/internal/batch"
	"loan-origination/internal/config"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/domain/officer"
	"loan-origination/internal/event"
	"loan-origination/internal/infrastructure/database/postgres"
	"loan-origination/internal/infrastructure/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Loan Origination API
// @version 1.0
// @description Loan applications, automated eligibility scoring and officer review.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()
	if err := cfg.Server.Auth.Validate(); err != nil {
		logger.Error("Refusing to start with an unsigned auth configuration", "error", err)
		os.Exit(1)
	}

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)
	rabbitMQConn := setupRabbitMQ(cfg, logger)
	redisClient := initializeRedisClient(cfg, logger)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger)
	services := initializeServices(cfg, rabbitMQConn, dbPool, logger)

	cronScheduler := startBatchJobs(cfg, logger, services.Loans)
	router := api.SetupRouter(rateLimiter, services, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, rabbitMQConn, redisClient, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}

	if cfg.Database.EnsureSchema {
		if err := postgres.EnsureSchema(ctx, dbPool, logger); err != nil {
			logger.Error("Failed to ensure database schema", "error", err)
			dbPool.Close()
			os.Exit(1)
		}
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func newEventPublisher(cfg *config.Config, rabbitConn *amqp.Connection, logger *slog.Logger) loan.EventPublisher {
	if rabbitConn == nil {
		logger.Info("RabbitMQ not connected, application events will be dropped")
		return event.NewNoopPublisher(logger)
	}
	publisher, err := event.NewRabbitMQEventPublisher(rabbitConn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to initialize RabbitMQ publisher, application events will be dropped", "error", err)
		return event.NewNoopPublisher(logger)
	}
	return publisher
}

// loanOptions turns the loan section of the config into service options.
func loanOptions(cfg config.LoanConfig, publisher loan.EventPublisher) []loan.Option {
	return []loan.Option{
		loan.WithPolicy(loan.DefaultPolicy().WithApprovalThreshold(cfg.ApprovalThreshold)),
		loan.WithDefaultInterestRate(cfg.DefaultInterestRate),
		loan.WithEventPublisher(publisher),
	}
}

func initializeServices(cfg *config.Config, rabbitConn *amqp.Connection, dbPool *pgxpool.Pool, logger *slog.Logger) api.Services {
	logger.Info("Initializing application components...")
	customerService := customer.NewCustomerService(postgres.NewCustomerRepository(dbPool, logger), logger)
	officerService := officer.NewOfficerService(postgres.NewOfficerRepository(dbPool, logger), logger)
	loanService := loan.NewLoanService(
		postgres.NewLoanApplicationRepository(dbPool, logger),
		customerService,
		officerService,
		logger,
		loanOptions(cfg.Loan, newEventPublisher(cfg, rabbitConn, logger))...,
	)
	return api.Services{Loans: loanService, Customers: customerService, Officers: officerService}
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, rabbitConn *amqp.Connection, redisClient *redis.Client,
	shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	triggerReason := waitForShutdownTrigger(shutdownChan, serverErrors, logger)

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	stopCronScheduler(cronScheduler, logger)
	shutdownHTTPServer(srv, serverErrors, logger)
	closeRabbitMQConnection(rabbitConn, logger)
	closeRedisClient(redisClient, logger)

	logger.Info("Application shutdown process complete.")
}

func waitForShutdownTrigger(shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) string {
	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
		return "signal: " + sig.String()
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		logger.Info("Server goroutine finished before signal.", "error", err)
		return "server exited"
	}
}

func stopCronScheduler(cronScheduler *cron.Cron, logger *slog.Logger) {
	if cronScheduler == nil {
		return
	}
	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}
}

func closeRabbitMQConnection(rabbitConn *amqp.Connection, logger *slog.Logger) {
	switch {
	case rabbitConn == nil:
		logger.Info("RabbitMQ connection was not established, skipping close.")
	case rabbitConn.IsClosed():
		logger.Info("RabbitMQ connection already closed, skipping close.")
	default:
		logger.Info("Closing RabbitMQ connection...")
		if err := rabbitConn.Close(); err != nil {
			logger.Error("Failed to close RabbitMQ connection gracefully", slog.Any("error", err))
		} else {
			logger.Info("RabbitMQ connection closed.")
		}
	}
}

func shutdownHTTPServer(srv *http.Server, serverErrors <-chan error, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}
}

// initializeRedisClient returns nil when Redis is not configured or not
// reachable; the rate limiter then runs in-process.
func initializeRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Info("Redis address not configured, skipping Redis client.")
		return nil
	}

	logger.Info("Initializing Redis client...", "addr", cfg.Redis.Addr)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Failed to connect to Redis, continuing without it", "error", err, "addr", cfg.Redis.Addr)
		_ = rdb.Close()
		return nil
	}

	logger.Info("Redis client connected successfully.", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return rdb
}

func closeRedisClient(redisClient *redis.Client, logger *slog.Logger) {
	if redisClient == nil {
		logger.Info("Redis client was not initialized, skipping close.")
		return
	}
	logger.Info("Closing Redis client connection...")
	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close Redis client connection gracefully", "error", err)
	} else {
		logger.Info("Redis client connection closed.")
	}
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, loanService loan.LoanService) *cron.Cron {
	if !cfg.Batch.PendingEvaluationEnabled {
		logger.Info("Pending evaluation sweep disabled via configuration, no batch jobs scheduled.")
		return nil
	}

	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	pendingJob := batch.NewPendingEvaluationJob(loanService, cfg.Batch.PendingEvaluationMinAge, logger)
	if _, err := batch.Schedule(c, batch.PendingEvaluationJobName, cfg.Batch.PendingEvaluationSchedule,
		cfg.Batch.PendingEvaluationTimeout, pendingJob, logger); err != nil {
		logger.Error("Pending evaluation sweep disabled", slog.Any("error", err))
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func rabbitMQURI(cfg config.RabbitMQConfig) (string, error) {
	if cfg.Host == "" {
		return "", fmt.Errorf("RabbitMQ host is not configured")
	}
	port := cfg.Port
	if port == 0 {
		port = 5672
	}
	switch {
	case cfg.Username != "" && cfg.Password != "":
		return fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.Username, cfg.Password, cfg.Host, port), nil
	case cfg.Username != "" || cfg.Password != "":
		return "", fmt.Errorf("RabbitMQ username and password must be provided together")
	default:
		return fmt.Sprintf("amqp://%s:%d/", cfg.Host, port), nil
	}
}

func connectRabbitMQ(uri string, logger *slog.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	retryCount := 5
	for i := 1; i <= retryCount; i++ {
		conn, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ")

			go func() {
				blockChan := conn.NotifyBlocked(make(chan amqp.Blocking))
				closeChan := conn.NotifyClose(make(chan *amqp.Error, 1))

				select {
				case b := <-blockChan:
					logger.Warn("RabbitMQ Connection Blocked", "reason", b.Reason)
				case e := <-closeChan:
					if e != nil {
						logger.Error("RabbitMQ Connection Closed", slog.Any("error", e))
					}
				}
			}()

			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying...",
			slog.Int("attempt", i),
			slog.Int("max_attempts", retryCount),
			slog.Any("error", err),
		)
		time.Sleep(time.Duration(i*2) * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", retryCount, err)
}

// setupRabbitMQ returns nil when publishing is disabled or the broker is unreachable.
func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) *amqp.Connection {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ publishing disabled via configuration.")
		return nil
	}

	uri, err := rabbitMQURI(cfg.RabbitMQ)
	if err != nil {
		logger.Error("Invalid RabbitMQ configuration", "error", err)
		return nil
	}

	conn, err := connectRabbitMQ(uri, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, continuing without events", "error", err)
		return nil
	}
	return conn
}
