package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60, cfg.JWT.ExpiryMinutes)
	assert.Equal(t, "memory", cfg.Blob.Driver)
	assert.Equal(t, 10, cfg.RateLimit.LoginRequests)
	assert.Equal(t, 30, cfg.RateLimit.UploadRequests)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, int64(25<<20), cfg.Upload.MaxBytes)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("BLOB_DRIVER", " S3 ")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RATE_LIMIT_UPLOAD_REQUESTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.Blob.Driver)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.7"}, cfg.Server.TrustedProxies)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5, cfg.RateLimit.UploadRequests)
}

func TestLoad_RejectsNonPositiveExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRY_MINUTES", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestBlobDriver(t *testing.T) {
	assert.Equal(t, "memory", blobDriver(""))
	assert.Equal(t, "memory", blobDriver("   "))
	assert.Equal(t, "gcs", blobDriver("GCS"))
	assert.Equal(t, "floppy", blobDriver("floppy"))
}
