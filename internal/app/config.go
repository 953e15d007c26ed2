package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/stockroom/console/internal/attachments"
)

// Storage drivers for product image uploads.
const (
	StorageMemory = "memory"
	StorageS3     = "s3"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	RateLimit         int           `envconfig:"APP_RATE_LIMIT" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	StorageDriver       string `envconfig:"STORAGE_DRIVER" default:"memory"`
	StorageEndpoint     string `envconfig:"STORAGE_ENDPOINT"`
	StorageRegion       string `envconfig:"STORAGE_REGION" default:"us-east-1"`
	StorageBucket       string `envconfig:"STORAGE_BUCKET" default:"stockroom"`
	StorageAccessKey    string `envconfig:"STORAGE_ACCESS_KEY"`
	StorageSecretKey    string `envconfig:"STORAGE_SECRET_KEY"`
	StorageUseSSL       bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	StorageUsePathStyle bool   `envconfig:"STORAGE_USE_PATH_STYLE" default:"true"`

	MasterDataWarmup      bool   `envconfig:"MASTERDATA_WARMUP" default:"false"`
	MasterDataRefreshCron string `envconfig:"MASTERDATA_REFRESH_CRON" default:"*/30 * * * *"`
	WorkerConcurrency     int    `envconfig:"WORKER_CONCURRENCY" default:"2"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend url %q must be absolute", c.BackendURL)
	}
	switch c.StorageDriver {
	case StorageMemory:
	case StorageS3:
		if c.StorageEndpoint == "" || c.StorageBucket == "" {
			return errors.New("s3 storage requires STORAGE_ENDPOINT and STORAGE_BUCKET")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// S3 returns the attachment store settings.
func (c *Config) S3() attachments.S3Config {
	return attachments.S3Config{
		Endpoint:     c.StorageEndpoint,
		Region:       c.StorageRegion,
		Bucket:       c.StorageBucket,
		AccessKey:    c.StorageAccessKey,
		SecretKey:    c.StorageSecretKey,
		UseSSL:       c.StorageUseSSL,
		UsePathStyle: c.StorageUsePathStyle,
	}
}
