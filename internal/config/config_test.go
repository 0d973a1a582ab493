package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_GLOBAL", "5s")
	t.Setenv("RATE_LIMIT_QUESTION", "1m")
	t.Setenv("JWT_TTL_MINUTES", "30")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.RateLimitGlobal)
	assert.Equal(t, time.Minute, cfg.RateLimitQuestion)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Contains(t, cfg.DSN(), "dbname=")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("RATE_LIMIT_ANSWER", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_ANSWER")
}

func TestDSNPrefersDatabaseURL(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://u:p@db:5432/stackit", DBHost: "ignored"}
	assert.Equal(t, "postgres://u:p@db:5432/stackit", cfg.DSN())
}

func TestStorageOptions(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "minio")
	t.Setenv("MINIO_BUCKET", "images")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.StorageOptions()
	assert.Equal(t, "minio", opts.Driver)
	assert.Equal(t, "images", opts.MinioBucket)
	assert.True(t, opts.MinioUseSSL)
	assert.Equal(t, "stackit", cfg.UploadFolder)
}
