package app

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "dev")
	unsetenv(t, "PORT", "JWT_SECRET", "DATABASE_DRIVER", "DATABASE_FILE", "STORAGE_DRIVER", "MAX_UPLOAD_BYTES")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 5001, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "docchat.db", cfg.DatabaseFile)
	require.Equal(t, StorageLocal, cfg.StorageDriver)
	require.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, "docchat", cfg.Mongo.Database)
	require.Equal(t, "us-east-1", cfg.S3.Region)
	require.True(t, cfg.IsDev())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://docchat@db/docchat")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "docs")
	t.Setenv("DOCUMENT_SERVICE_URL", "http://rag:8000")
	t.Setenv("DOCUMENT_SERVICE_TIMEOUT", "45s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, "docs", cfg.S3.Bucket)
	require.Equal(t, "http://rag:8000", cfg.DocumentServiceURL)
	require.Equal(t, 45*time.Second, cfg.DocumentServiceTimeout)
	require.False(t, cfg.IsDev())
}

func TestLoadConfig_BadValue(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func validConfig() Config {
	return Config{
		Env:            "prod",
		Port:           5001,
		JWTSecret:      testSecret,
		DatabaseDriver: DriverSQLite,
		DatabaseFile:   "docchat.db",
		StorageDriver:  StorageLocal,
		UploadDir:      "uploads",
		MaxUploadBytes: 1 << 20,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret in prod", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"missing secret in dev", func(c *Config) { c.Env = "dev"; c.JWTSecret = "" }, ""},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "at least 32 bytes"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "oracle" }, "unknown DATABASE_DRIVER"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "DATABASE_URL"},
		{"mongo without url", func(c *Config) { c.DatabaseDriver = DriverMongo }, "MONGODB_URL"},
		{"s3 without bucket", func(c *Config) { c.StorageDriver = StorageS3 }, "S3_BUCKET"},
		{"unknown storage", func(c *Config) { c.StorageDriver = "ftp" }, "unknown STORAGE_DRIVER"},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, "MAX_UPLOAD_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseDriver = "oracle"
	cfg.StorageDriver = "ftp"

	err := cfg.Validate()
	require.Error(t, err)
	require.Equal(t, 2, strings.Count(err.Error(), ErrInvalidConfig.Error()))
}
