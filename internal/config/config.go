package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Server       ServerConfig
	Storage      StorageConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Exchange     ExchangeConfig
	FollowUp     FollowUpConfig
	RateLimit    RateLimitConfig
	Logging      LoggingConfig
	GeminiAPIKey string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig selects the repository backend. "memory" keeps everything
// in process and is meant for local runs without Postgres.
type StorageConfig struct {
	Type            string
	AutoMigrate     bool
	ProfileCacheTTL time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiryMin int
}

// ExchangeConfig controls the deep link format and the application id
// stamped into every shared payload.
type ExchangeConfig struct {
	Scheme string
	Host   string
	AppID  string
}

type FollowUpConfig struct {
	WorkerEnabled bool
	PollInterval  time.Duration
	BatchSize     int
	MaxAttempts   int
	RetryDelay    time.Duration
	LeaseTimeout  time.Duration
	KeyPrefix     string
}

type RateLimitConfig struct {
	ExchangeRPS   float64
	ExchangeBurst int
}

type LoggingConfig struct {
	Level string
	Dev   bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("STORAGE_TYPE", "postgres")
	v.SetDefault("STORAGE_AUTO_MIGRATE", true)
	v.SetDefault("PROFILE_CACHE_TTL", "5m")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("JWT_ACCESS_EXPIRY_MIN", 7*24*60)
	v.SetDefault("EXCHANGE_SCHEME", "tapcard")
	v.SetDefault("EXCHANGE_HOST", "connect")
	v.SetDefault("EXCHANGE_APP_ID", "com.tapcard.app")
	v.SetDefault("FOLLOWUP_WORKER_ENABLED", true)
	v.SetDefault("FOLLOWUP_POLL_INTERVAL", "5s")
	v.SetDefault("FOLLOWUP_BATCH_SIZE", 50)
	v.SetDefault("FOLLOWUP_MAX_ATTEMPTS", 5)
	v.SetDefault("FOLLOWUP_RETRY_DELAY", "1m")
	v.SetDefault("FOLLOWUP_LEASE_TIMEOUT", "5m")
	v.SetDefault("FOLLOWUP_KEY_PREFIX", "tapcard:jobs")
	v.SetDefault("RATE_LIMIT_EXCHANGE_RPS", 2.0)
	v.SetDefault("RATE_LIMIT_EXCHANGE_BURST", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEV", false)
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Type:            v.GetString("STORAGE_TYPE"),
			AutoMigrate:     v.GetBool("STORAGE_AUTO_MIGRATE"),
			ProfileCacheTTL: v.GetDuration("PROFILE_CACHE_TTL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret:    v.GetString("JWT_ACCESS_SECRET"),
			AccessExpiryMin: v.GetInt("JWT_ACCESS_EXPIRY_MIN"),
		},
		Exchange: ExchangeConfig{
			Scheme: v.GetString("EXCHANGE_SCHEME"),
			Host:   v.GetString("EXCHANGE_HOST"),
			AppID:  v.GetString("EXCHANGE_APP_ID"),
		},
		FollowUp: FollowUpConfig{
			WorkerEnabled: v.GetBool("FOLLOWUP_WORKER_ENABLED"),
			PollInterval:  v.GetDuration("FOLLOWUP_POLL_INTERVAL"),
			BatchSize:     v.GetInt("FOLLOWUP_BATCH_SIZE"),
			MaxAttempts:   v.GetInt("FOLLOWUP_MAX_ATTEMPTS"),
			RetryDelay:    v.GetDuration("FOLLOWUP_RETRY_DELAY"),
			LeaseTimeout:  v.GetDuration("FOLLOWUP_LEASE_TIMEOUT"),
			KeyPrefix:     v.GetString("FOLLOWUP_KEY_PREFIX"),
		},
		RateLimit: RateLimitConfig{
			ExchangeRPS:   v.GetFloat64("RATE_LIMIT_EXCHANGE_RPS"),
			ExchangeBurst: v.GetInt("RATE_LIMIT_EXCHANGE_BURST"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dev:   v.GetBool("LOG_DEV"),
		},
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}
	if c.Exchange.AppID == "" {
		return fmt.Errorf("exchange app id is required")
	}
	if c.FollowUp.PollInterval <= 0 {
		return fmt.Errorf("follow-up poll interval must be positive")
	}
	if c.FollowUp.MaxAttempts < 1 {
		return fmt.Errorf("follow-up max attempts must be at least 1")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetURL returns the PostgreSQL URL form used by the migration runner
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
