package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	HTTPAddr string

	KafkaBrokerURL              string
	KafkaTransactionEventsTopic string

	RedisAddr       string
	RedisAccountTTL time.Duration

	OutboxPollInterval time.Duration
	OutboxPollTimeout  time.Duration

	MigrationsURL string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.DBConfig.Host = getEnvOrDefault("COREBANKING_DB_HOST", "localhost")
	cfg.DBConfig.Port = getEnvAsInt("COREBANKING_DB_PORT", 5432)
	cfg.DBConfig.User = getEnvOrDefault("COREBANKING_DB_USER", "user")
	cfg.DBConfig.Password = getEnvOrDefault("COREBANKING_DB_PASSWORD", "password")
	cfg.DBConfig.Name = getEnvOrDefault("COREBANKING_DB_NAME", "corebanking_db")
	cfg.DBConfig.SSLMode = getEnvOrDefault("COREBANKING_DB_SSLMODE", "disable")

	cfg.HTTPAddr = getEnvOrDefault("COREBANKING_HTTP_ADDR", ":8080")

	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaTransactionEventsTopic = getEnvOrDefault("KAFKA_TRANSACTION_EVENTS_TOPIC", "transaction_events")

	cfg.RedisAddr = getEnvOrDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisAccountTTL = getEnvAsDuration("REDIS_ACCOUNT_TTL", 5*time.Minute)

	cfg.OutboxPollInterval = getEnvAsDuration("OUTBOX_POLL_INTERVAL", 1*time.Second)
	cfg.OutboxPollTimeout = getEnvAsDuration("OUTBOX_POLL_TIMEOUT", 500*time.Millisecond)

	cfg.MigrationsURL = getEnvOrDefault("COREBANKING_MIGRATIONS_URL", "file://migrations")

	return cfg, nil
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokerURL, ",")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
