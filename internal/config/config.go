package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"church-attendance/internal/schedule"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	DatabaseDriver string
	DatabaseURL    string
	HTTPAddr       string
	APIKey         string

	TelegramToken   string
	TelegramDebug   bool
	BaseAdminChatID int64

	HorizonMonths int
	Location      *time.Location
	DigestCron    string

	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	AppURL        string
	InvitationTTL time.Duration

	SeedFile string
	LogLevel logrus.Level
}

// BotEnabled reports whether a Telegram token was configured.
func (c *AppConfig) BotEnabled() bool {
	return c.TelegramToken != ""
}

// MailEnabled reports whether SMTP delivery was configured.
func (c *AppConfig) MailEnabled() bool {
	return c.SMTPHost != ""
}

var instance *AppConfig
var once sync.Once

func GetAppConfig() *AppConfig {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("invalid configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load reads the configuration from the process environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		DatabaseDriver:  strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURL:     getEnv("DATABASE_URL", "church.db"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		APIKey:          getEnv("API_KEY", ""),
		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramDebug:   getEnvAsBool("TELEGRAM_DEBUG", false),
		BaseAdminChatID: getEnvAsInt("BASE_ADMIN_CHAT_ID", 0),
		HorizonMonths:   int(getEnvAsInt("HORIZON_MONTHS", 3)),
		DigestCron:      getEnv("DIGEST_CRON", "0 18 * * 0"),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        int(getEnvAsInt("SMTP_PORT", 587)),
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		AppURL:          strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		InvitationTTL:   time.Duration(getEnvAsInt("INVITATION_TTL_HOURS", 168)) * time.Hour,
		SeedFile:        getEnv("SEED_FILE", ""),
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	if cfg.HorizonMonths <= 0 || cfg.HorizonMonths > schedule.MaxHorizonMonths {
		return nil, fmt.Errorf("HORIZON_MONTHS must be between 1 and %d, got %d", schedule.MaxHorizonMonths, cfg.HorizonMonths)
	}

	if cfg.InvitationTTL <= 0 {
		return nil, fmt.Errorf("INVITATION_TTL_HOURS must be positive")
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	return cfg, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}
