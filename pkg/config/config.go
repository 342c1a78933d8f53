package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Encryption EncryptionConfig
	RateLimit  RateLimitConfig
	Blob       BlobConfig
	Upload     UploadConfig
	CORS       CORSConfig
}

type ServerConfig struct {
	Host     string
	Port     int
	Env      string
	LogLevel string
	// TrustedProxies lists CIDRs or addresses whose forwarding headers are
	// believed. Empty means the peer address is the client.
	TrustedProxies []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

// JWTConfig holds the token signing secret. An empty secret means a random
// key is generated at startup and tokens do not survive a restart.
type JWTConfig struct {
	Secret        string
	ExpiryMinutes int
}

// EncryptionConfig holds the age identity used to encrypt document blobs.
// Encryption at rest is disabled when Key is empty.
type EncryptionConfig struct {
	Key string
}

type RateLimitConfig struct {
	Requests       int
	WindowSeconds  int
	LoginRequests  int
	UploadRequests int
}

type BlobConfig struct {
	Driver string // s3, gcs, memory
	Bucket string
	Prefix string

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	GCSCredentialsFile string
}

type UploadConfig struct {
	MaxBytes int64
}

type CORSConfig struct {
	AllowedOrigins []string
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether a Redis host is configured at all.
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryMinutes) * time.Minute
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "projects")
	v.SetDefault("DATABASE_PASSWORD", "projects_secret")
	v.SetDefault("DATABASE_NAME", "projects")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY_MINUTES", 60)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_LOGIN_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_UPLOAD_REQUESTS", 30)
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("BLOB_DRIVER", "memory")
	v.SetDefault("BLOB_BUCKET", "project-documents")
	v.SetDefault("BLOB_PREFIX", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("UPLOAD_MAX_BYTES", 25<<20)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host:     v.GetString("SERVER_HOST"),
			Port:     v.GetInt("SERVER_PORT"),
			Env:      v.GetString("SERVER_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),

			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			ExpiryMinutes: v.GetInt("JWT_EXPIRY_MINUTES"),
		},
		Encryption: EncryptionConfig{
			Key: v.GetString("ENCRYPTION_KEY"),
		},
		RateLimit: RateLimitConfig{
			Requests:       v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds:  v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			LoginRequests:  v.GetInt("RATE_LIMIT_LOGIN_REQUESTS"),
			UploadRequests: v.GetInt("RATE_LIMIT_UPLOAD_REQUESTS"),
		},
		Blob: BlobConfig{
			Driver:             blobDriver(v.GetString("BLOB_DRIVER")),
			Bucket:             v.GetString("BLOB_BUCKET"),
			Prefix:             v.GetString("BLOB_PREFIX"),
			S3Region:           v.GetString("S3_REGION"),
			S3Endpoint:         v.GetString("S3_ENDPOINT"),
			S3AccessKey:        v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:        v.GetString("S3_SECRET_KEY"),
			GCSCredentialsFile: v.GetString("GCS_CREDENTIALS_FILE"),
		},
		Upload: UploadConfig{
			MaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if cfg.JWT.ExpiryMinutes <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY_MINUTES must be positive, got %d", cfg.JWT.ExpiryMinutes)
	}

	return cfg, nil
}

// blobDriver lowercases the driver name and maps an empty value to memory.
func blobDriver(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "memory"
	}
	return s
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
