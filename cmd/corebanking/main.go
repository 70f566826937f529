package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	goredis "github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"corebanking/internal/app/banking"
	"corebanking/internal/cache"
	"corebanking/internal/config"
	banking_http "corebanking/internal/handler/http/banking"
	"corebanking/internal/infrastructure/database"
	kafka_infra "corebanking/internal/infrastructure/kafka"
	"corebanking/internal/outbox"
	"corebanking/internal/repository/accounts_repo"
	"corebanking/internal/repository/customers_repo"
	"corebanking/internal/repository/outbox_repo"
	"corebanking/internal/repository/transactions_repo"
)

func ensureKafkaTopics(ctx context.Context, brokerURLs []string, topics []string, logger *zap.Logger) error {
	conn, err := kafka.DialContext(ctx, "tcp", brokerURLs[0])
	if err != nil {
		return fmt.Errorf("failed to dial kafka broker for admin operations: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get kafka controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer controllerConn.Close()

	topicConfigs := make([]kafka.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}

	if err := controllerConn.CreateTopics(topicConfigs...); err != nil {
		if err == kafka.TopicAlreadyExists {
			logger.Info("kafka topics already exist, skipping creation")
		} else {
			return fmt.Errorf("failed to create kafka topics: %w", err)
		}
	} else {
		logger.Info("kafka topics ensured", zap.Strings("topics", topics))
	}
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("Core banking service starting...")

	dbConfig := database.Config{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.Name,
		SSLMode:  cfg.DBConfig.SSLMode,
	}

	var db *database.Postgres
	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = database.NewPostgres(dbConfig)
		if err == nil {
			appLogger.Info("connected to postgres")
			break
		}
		appLogger.Warn(fmt.Sprintf("failed to connect to database (attempt %d/%d): %v, retrying in %s", i+1, maxRetries, err, retryDelay))
		time.Sleep(retryDelay)
	}
	if db == nil {
		appLogger.Fatal("could not connect to database after multiple retries", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("error closing database connection", zap.Error(err))
		}
	}()

	appLogger.Info("running database migrations...")
	m, err := migrate.New(cfg.MigrationsURL, cfg.GetDBMigrationConnectionString())
	if err != nil {
		appLogger.Fatal("failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		appLogger.Fatal("failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("database migrations completed")

	topicCtx, topicCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer topicCancel()
	if err := ensureKafkaTopics(topicCtx, cfg.GetKafkaBrokers(), []string{cfg.KafkaTransactionEventsTopic}, appLogger); err != nil {
		appLogger.Fatal("failed to ensure kafka topics", zap.Error(err))
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("error closing redis client", zap.Error(err))
		}
	}()
	accountCache := cache.NewAccountCache(redisClient, cfg.RedisAccountTTL,
		appLogger.With(zap.String("component", "AccountCache")))

	customerRepository := customers_repo.NewCustomerRepository()
	accountRepository := accounts_repo.NewAccountRepository()
	transactionRepository := transactions_repo.NewTransactionRepository()
	outboxRepository := outbox_repo.NewOutboxRepository()

	bankingService := banking.NewBankingService(
		db,
		customerRepository,
		accountRepository,
		transactionRepository,
		outboxRepository,
		accountCache,
		cfg.KafkaTransactionEventsTopic,
		banking.DefaultGenerators(),
		appLogger.With(zap.String("component", "BankingService")),
	)
	appLogger.Info("banking service initialized")

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	banking_http.RegisterRoutes(router, bankingService, appLogger.With(zap.String("component", "HTTPHandler")))

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	kafkaProducer := kafka_infra.NewProducer(
		cfg.GetKafkaBrokers(),
		cfg.KafkaTransactionEventsTopic,
		appLogger.With(zap.String("component", "KafkaProducer")),
	)
	defer func() {
		if err := kafkaProducer.Close(); err != nil {
			appLogger.Error("error closing kafka producer", zap.Error(err))
		}
	}()

	outboxProcessor := outbox.NewProcessor(
		db,
		outboxRepository,
		kafkaProducer,
		cfg.OutboxPollInterval,
		cfg.OutboxPollTimeout,
		appLogger.With(zap.String("component", "OutboxProcessor")),
	)

	ctxMain, cancelMain := context.WithCancel(context.Background())

	go func() {
		appLogger.Info("starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go outboxProcessor.Run(ctxMain)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	appLogger.Info("shutting down...")

	cancelMain()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		appLogger.Info("HTTP server gracefully shut down")
	}

	appLogger.Info("core banking service stopped")
}
