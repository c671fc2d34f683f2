package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all settings of the admin service, loaded from
// environment variables with sane local-development defaults.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Mongo      MongoConfig
	JWT        JWTConfig
	Uploads    UploadsConfig
	Pagination PaginationConfig
	Cleanup    CleanupConfig
	LogLevel   string
}

type ServerConfig struct {
	Host string
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type MongoConfig struct {
	URI    string
	DBName string
}

// JWTConfig carries the secret used to verify session tokens issued by
// the external auth provider. Token issuance is not this service's job.
type JWTConfig struct {
	Secret string
}

type UploadsConfig struct {
	Dir          string
	MaxSizeBytes int64
}

type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// CleanupConfig drives the cron sweep of orphaned upload files.
type CleanupConfig struct {
	Schedule string
	Enabled  bool
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	maxUpload, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES value: %w", err)
	}

	defaultPageSize, err := strconv.Atoi(getEnv("PAGE_SIZE_DEFAULT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAGE_SIZE_DEFAULT value: %w", err)
	}

	maxPageSize, err := strconv.Atoi(getEnv("PAGE_SIZE_MAX", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAGE_SIZE_MAX value: %w", err)
	}

	cleanupEnabled, err := strconv.ParseBool(getEnv("CLEANUP_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLEANUP_ENABLED value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "painelloja"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "catalog_events"),
		},
		Mongo: MongoConfig{
			URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGO_DB", "painelloja_audit"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me-in-production"),
		},
		Uploads: UploadsConfig{
			Dir:          getEnv("UPLOAD_DIR", "public/uploads"),
			MaxSizeBytes: maxUpload,
		},
		Pagination: PaginationConfig{
			DefaultPageSize: defaultPageSize,
			MaxPageSize:     maxPageSize,
		},
		Cleanup: CleanupConfig{
			Schedule: getEnv("CLEANUP_SCHEDULE", "@daily"),
			Enabled:  cleanupEnabled,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// DSN returns the PostgreSQL connection string in libpq format.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
