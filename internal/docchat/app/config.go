package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/storage"
	"github.com/aussiebroadwan/docchat/internal/docchat/store/drivers/mongo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	StorageLocal = "local"
	StorageS3    = "s3"

	// MinJWTSecretLength matches the HS256 signer's lower bound.
	MinJWTSecretLength = 32
)

var ErrInvalidConfig = errors.New("app: invalid configuration")

type Config struct {
	Env                 string        `env:"ENV" envDefault:"dev"`         // dev, staging, prod
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"` // json, text
	Port                int           `env:"PORT" envDefault:"5001"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// JWTSecret signs session tokens. Required outside dev; dev falls back to
	// a random per-process secret so tokens die with the process.
	JWTSecret  string `env:"JWT_SECRET"`
	PepperFile string `env:"PEPPER_FILE" envDefault:"pepper"`

	DatabaseDriver string       `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseFile   string       `env:"DATABASE_FILE" envDefault:"docchat.db"`
	DatabaseURL    string       `env:"DATABASE_URL"` // postgres
	Mongo          mongo.Config // MONGODB_*

	// RedisURL switches rate limiting from per-process to shared counters.
	RedisURL            string        `env:"REDIS_URL"`
	RedisConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"5s"`

	StorageDriver  string           `env:"STORAGE_DRIVER" envDefault:"local"`
	UploadDir      string           `env:"UPLOAD_DIR" envDefault:"uploads"`
	PublicURL      string           `env:"PUBLIC_URL" envDefault:"/uploads"`
	S3             storage.S3Config // S3_*
	MaxUploadBytes int64            `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	DocumentServiceURL     string        `env:"DOCUMENT_SERVICE_URL"`
	DocumentServiceTimeout time.Duration `env:"DOCUMENT_SERVICE_TIMEOUT" envDefault:"30s"`
	UpstreamCheckInterval  time.Duration `env:"UPSTREAM_CHECK_INTERVAL" envDefault:"30s"`
}

// LoadConfig reads an optional .env from the working directory, then the
// process environment. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsDev() bool { return c.Env == "dev" }

// Validate checks cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Port <= 0 || c.Port > 65535 {
		fail("PORT %d out of range", c.Port)
	}

	switch {
	case c.JWTSecret == "" && !c.IsDev():
		fail("JWT_SECRET is required when ENV=%s", c.Env)
	case c.JWTSecret != "" && len(c.JWTSecret) < MinJWTSecretLength:
		fail("JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			fail("DATABASE_FILE is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			fail("DATABASE_URL is required for the postgres driver")
		}
	case DriverMongo:
		if c.Mongo.ConnectionURL == "" {
			fail("MONGODB_URL is required for the mongo driver")
		}
	default:
		fail("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.StorageDriver {
	case StorageLocal:
		if c.UploadDir == "" {
			fail("UPLOAD_DIR is required for local storage")
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			fail("S3_BUCKET is required for s3 storage")
		}
	default:
		fail("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.MaxUploadBytes <= 0 {
		fail("MAX_UPLOAD_BYTES must be positive")
	}

	return errors.Join(errs...)
}
