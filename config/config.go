package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	Name         string
	Version      string
	HTTP         HTTPConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Calendar     CalendarConfig
	Availability AvailabilityConfig
	Timezone     TimezoneConfig
	Sync         SyncConfig
	S3           S3Config
	Notify       NotifyConfig
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxHeaderMB  int
}

type PostgresConfig struct {
	Host               string
	Port               string
	Username           string
	Password           string
	DBName             string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	MaxLifetime        time.Duration
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	LockTTL  time.Duration
}

type CalendarConfig struct {
	BaseURL        string
	TokenURL       string
	ServiceAccount string
	PrivateKeyPEM  string
	Scope          string
	Timeout        time.Duration
}

type AvailabilityConfig struct {
	FailOpen           bool
	RevalidateOnUpdate bool
	SlotStepMinutes    int
	MaxDurationMinutes int
}

type TimezoneConfig struct {
	Supported []string
	Default   string
}

type SyncConfig struct {
	WindowPastDays   int
	WindowFutureDays int
}

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

type NotifyConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	httpReadTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}

	httpWriteTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}

	postgresMaxLifetime, err := time.ParseDuration(getEnv("POSTGRES_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, err
	}

	redisLockTTL, err := time.ParseDuration(getEnv("REDIS_LOCK_TTL", "5s"))
	if err != nil {
		return nil, err
	}

	calendarTimeout, err := time.ParseDuration(getEnv("CALENDAR_TIMEOUT", "5s"))
	if err != nil {
		return nil, err
	}

	notifyTimeout, err := time.ParseDuration(getEnv("NOTIFY_TIMEOUT", "3s"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		Name:        getEnv("APP_NAME", "agenda"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		HTTP: HTTPConfig{
			Port:         getEnv("HTTP_PORT", "8080"),
			ReadTimeout:  httpReadTimeout,
			WriteTimeout: httpWriteTimeout,
			MaxHeaderMB:  getEnvAsInt("HTTP_MAX_HEADER_MB", 1),
		},
		Postgres: PostgresConfig{
			Host:               getEnv("POSTGRES_HOST", "localhost"),
			Port:               getEnv("POSTGRES_PORT", "5432"),
			Username:           getEnv("POSTGRES_USER", "postgres"),
			Password:           getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:             getEnv("POSTGRES_DB", "agenda"),
			SSLMode:            getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConnections:     getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("POSTGRES_MAX_IDLE_CONNECTIONS", 5),
			MaxLifetime:        postgresMaxLifetime,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			LockTTL:  redisLockTTL,
		},
		Calendar: CalendarConfig{
			BaseURL:        getEnv("CALENDAR_BASE_URL", "https://www.googleapis.com/calendar/v3"),
			TokenURL:       getEnv("CALENDAR_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			ServiceAccount: getEnv("CALENDAR_SERVICE_ACCOUNT", ""),
			PrivateKeyPEM:  getEnv("CALENDAR_PRIVATE_KEY", ""),
			Scope:          getEnv("CALENDAR_SCOPE", "https://www.googleapis.com/auth/calendar"),
			Timeout:        calendarTimeout,
		},
		Availability: AvailabilityConfig{
			FailOpen:           getEnv("AVAILABILITY_FAIL_OPEN", "true") == "true",
			RevalidateOnUpdate: getEnv("AVAILABILITY_REVALIDATE_ON_UPDATE", "false") == "true",
			SlotStepMinutes:    getEnvAsInt("AVAILABILITY_SLOT_STEP_MINUTES", 30),
			MaxDurationMinutes: getEnvAsInt("AVAILABILITY_MAX_DURATION_MINUTES", 480),
		},
		Timezone: TimezoneConfig{
			Supported: getEnvAsSlice("TIMEZONE_SUPPORTED", []string{
				"America/Santiago",
				"America/Sao_Paulo",
				"America/Bogota",
				"America/Mexico_City",
				"America/Lima",
				"UTC",
			}),
			Default: getEnv("TIMEZONE_DEFAULT", "America/Santiago"),
		},
		Sync: SyncConfig{
			WindowPastDays:   getEnvAsInt("SYNC_WINDOW_PAST_DAYS", 30),
			WindowFutureDays: getEnvAsInt("SYNC_WINDOW_FUTURE_DAYS", 90),
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("S3_BUCKET", "agenda"),
			UseSSL:          getEnv("S3_USE_SSL", "true") == "true",
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			Timeout:    notifyTimeout,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value := 0
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
