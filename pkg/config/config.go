package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Models   ModelsConfig
	Batch    BatchConfig
	Lookup   LookupConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level  string `validate:"required"`
	Format string `validate:"oneof=json console"`
}

type ServerConfig struct {
	Port         string        `validate:"required,numeric"`
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
	BodyLimitMB  int           `validate:"min=1,max=1024"`
}

type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required,numeric"`
	User     string `validate:"required"`
	Password string
	DBName   string `validate:"required"`
	SSLMode  string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns int32  `validate:"min=1"`
}

// DSN returns the libpq style connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig configures the optional lookup cache. An empty URL disables it.
type RedisConfig struct {
	URL string
	TTL time.Duration `validate:"gt=0"`
}

type ModelsConfig struct {
	ManifestPath string `validate:"required"`
}

type BatchConfig struct {
	Policy string `validate:"oneof=all_or_nothing best_effort"`
}

type LookupConfig struct {
	DefaultLimit int `validate:"min=1"`
	MaxLimit     int `validate:"gtefield=DefaultLimit"`
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same way
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, err := getIntEnv("SERVER_READ_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := getIntEnv("SERVER_WRITE_TIMEOUT", 300)
	if err != nil {
		return nil, err
	}
	bodyLimit, err := getIntEnv("SERVER_BODY_LIMIT_MB", 32)
	if err != nil {
		return nil, err
	}
	maxConns, err := getIntEnv("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	redisTTL, err := getIntEnv("REDIS_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	defaultLimit, err := getIntEnv("LOOKUP_DEFAULT_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	maxLimit, err := getIntEnv("LOOKUP_MAX_LIMIT", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			BodyLimitMB:  bodyLimit,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "shelfpulse"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(maxConns),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: time.Duration(redisTTL) * time.Second,
		},
		Models: ModelsConfig{
			ManifestPath: getEnv("MODELS_MANIFEST", "models/manifest.yaml"),
		},
		Batch: BatchConfig{
			Policy: getEnv("BATCH_POLICY", "all_or_nothing"),
		},
		Lookup: LookupConfig{
			DefaultLimit: defaultLimit,
			MaxLimit:     maxLimit,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
