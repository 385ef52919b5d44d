package config

import (
	"os"
	"strconv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverMinIO = "minio"
	StorageDriverS3    = "s3"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
// PublicBaseURL, when set, replaces "<scheme>://<endpoint>/<bucket>" in object URLs.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// S3Config holds settings for AWS S3 or any S3-compatible endpoint.
// Empty credentials fall back to the default AWS credential chain.
type S3Config struct {
	Region        string
	Bucket        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UsePathStyle  bool
	PublicBaseURL string
}

// UploadConfig tunes the batch upload runner.
type UploadConfig struct {
	// Concurrency bounds simultaneous pipelines; zero or negative means unbounded.
	Concurrency     int
	DefaultCategory string
	MaxBodyBytes    int
}

// PreviewConfig tunes the preview renderer.
type PreviewConfig struct {
	MaxWidth        int
	ProbeTimeoutSec int
	PresignTTLSec   int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	LogDev        bool
	StorageDriver string
	Database      DatabaseConfig
	MinIO         MinIOConfig
	S3            S3Config
	Upload        UploadConfig
	Preview       PreviewConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:       getEnv("APP_HOST", "localhost:8080"),
		Port:          getEnv("PORT", "8080"), // default only for non-sensitive value
		LogDev:        getEnvBool("LOG_DEV", false),
		StorageDriver: getEnv("STORAGE_DRIVER", StorageDriverMinIO),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", ""),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: getEnv("MINIO_PUBLIC_BASE_URL", ""),
		},
		S3: S3Config{
			Region:        getEnv("S3_REGION", "us-east-1"),
			Bucket:        getEnv("S3_BUCKET", ""),
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			AccessKey:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:  getEnvBool("S3_USE_PATH_STYLE", false),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		Upload: UploadConfig{
			Concurrency:     getEnvInt("UPLOAD_CONCURRENCY", 8),
			DefaultCategory: getEnv("UPLOAD_DEFAULT_CATEGORY", "general"),
			MaxBodyBytes:    getEnvInt("UPLOAD_MAX_BODY_BYTES", 512*1024*1024),
		},
		Preview: PreviewConfig{
			MaxWidth:        getEnvInt("PREVIEW_MAX_WIDTH", 1200),
			ProbeTimeoutSec: getEnvInt("PREVIEW_PROBE_TIMEOUT_SEC", 5),
			PresignTTLSec:   getEnvInt("PREVIEW_PRESIGN_TTL_SEC", 900),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
