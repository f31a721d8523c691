package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	DBMaxConns            int
	StoreTimeout          time.Duration
	RequestTimeout        time.Duration
	Environment           string
	RunMigrations         bool
	MigrationsDir         string
	LogLevel              string
	LogFormat             string
	JWTSecret             string
	TokenTTL              time.Duration
	SeedSuperuserUsername string
	SeedSuperuserPassword string
	DeviceDefaultPassword string
	ImageDir              string
	PublicBaseURL         string
	MaxBodyBytes          int64
	MaxUploadBytes        int64
	FaceImagesDir         string
	FaceServiceURL        string
	FaceServiceTimeout    time.Duration
	FaceSyncSchedule      string
	FaceMaxDimension      int
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	DeviceCacheTTL        time.Duration
	AttendanceTimezone    string
	PinRateLimitPerMinute int
	MetricsEnabled        bool
}

func Load() Config {
	return Config{
		Addr:                  getEnv("APP_ADDR", ":3012"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		DBMaxConns:            getEnvInt("DB_MAX_CONNS", 10),
		StoreTimeout:          getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		RequestTimeout:        getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		Environment:           getEnv("APP_ENV", "development"),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", "migrations"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		TokenTTL:              getEnvDuration("TOKEN_TTL", 12*time.Hour),
		SeedSuperuserUsername: getEnv("SEED_SUPERUSER_USERNAME", "superuser"),
		SeedSuperuserPassword: getEnv("SEED_SUPERUSER_PASSWORD", ""),
		DeviceDefaultPassword: getEnv("DEVICE_DEFAULT_PASSWORD", "default123"),
		ImageDir:              getEnv("IMAGE_DIR", "images"),
		PublicBaseURL:         strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 50<<20)),
		MaxUploadBytes:        int64(getEnvInt("MAX_UPLOAD_BYTES", 32<<20)),
		FaceImagesDir:         getEnv("FACE_IMAGES_DIR", "face_recognition_service/images"),
		FaceServiceURL:        strings.TrimRight(getEnv("FACE_SERVICE_URL", "http://localhost:8000"), "/"),
		FaceServiceTimeout:    getEnvDuration("FACE_SERVICE_TIMEOUT", 30*time.Second),
		FaceSyncSchedule:      getEnv("FACE_SYNC_SCHEDULE", ""),
		FaceMaxDimension:      getEnvInt("FACE_MAX_DIMENSION", 640),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		DeviceCacheTTL:        getEnvDuration("DEVICE_CACHE_TTL", 10*time.Minute),
		AttendanceTimezone:    getEnv("ATTENDANCE_TIMEZONE", "UTC"),
		PinRateLimitPerMinute: getEnvInt("PIN_RATE_LIMIT_PER_MINUTE", 10),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// Location returns the timezone used to decide which calendar day a shift belongs to.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.AttendanceTimezone)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.FaceMaxDimension <= 0 {
		return fmt.Errorf("FACE_MAX_DIMENSION must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("ATTENDANCE_TIMEZONE is invalid: %w", err)
	}
	return nil
}
