package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	AppPort           string
	DbHost            string
	DbPort            string
	DbUser            string
	DbPassword        string
	DbName            string
	DbMaxOpenConns    int
	DbConnMaxLifetime time.Duration
	TrustedProxies    []string
	TranslationFolder string

	Smtp     SmtpConfig
	Reminder ReminderConfig
	Events   EventsConfig
}

type SmtpConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Disabled routes mails to the log instead of the SMTP server.
	Disabled bool
}

type ReminderConfig struct {
	Cron        string
	Interval    time.Duration
	Location    *time.Location
	SendTimeout time.Duration
}

// Enabled is false unless a cron expression or an interval is configured.
func (c ReminderConfig) Enabled() bool {
	return c.Cron != "" || c.Interval > 0
}

type EventsConfig struct {
	QueueSize   int
	MaxAttempts int
}

func LoadConfig() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		DbHost:            getEnv("MYSQL_HOST", "db"),
		DbPort:            getEnv("MYSQL_PORT", "3306"),
		DbUser:            getEnv("MYSQL_USER", "sailclub"),
		DbPassword:        getEnv("MYSQL_PASSWORD", "sailclub"),
		DbName:            getEnv("MYSQL_DATABASE", "sailclub"),
		DbMaxOpenConns:    getEnvInt("MYSQL_MAX_OPEN_CONNS", 10),
		DbConnMaxLifetime: time.Duration(getEnvInt("MYSQL_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
		TrustedProxies:    parseTrustedProxies(os.Getenv("TRUSTED_PROXIES")),
		TranslationFolder: getEnv("TRANSLATION_FOLDER", "pkg/translator/translation"),
		Smtp: SmtpConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@sailclub.local"),
			Disabled: getEnvBool("SMTP_DISABLED", false),
		},
		Reminder: ReminderConfig{
			Cron:        strings.TrimSpace(os.Getenv("REMINDER_CRON")),
			Interval:    time.Duration(getEnvInt("REMINDER_INTERVAL_SECONDS", 0)) * time.Second,
			Location:    getEnvLocation("REMINDER_TIMEZONE", time.Local),
			SendTimeout: time.Duration(getEnvInt("REMINDER_SEND_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Events: EventsConfig{
			QueueSize:   getEnvInt("EVENT_QUEUE_SIZE", 256),
			MaxAttempts: getEnvInt("EVENT_MAX_ATTEMPTS", 3),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		zap.L().Warn("invalid integer in environment, using default", zap.String("key", key), zap.Int("default", fallback))
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		zap.L().Warn("invalid boolean in environment, using default", zap.String("key", key), zap.Bool("default", fallback))
		return fallback
	}
	return parsed
}

func getEnvLocation(key string, fallback *time.Location) *time.Location {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	location, err := time.LoadLocation(value)
	if err != nil {
		zap.L().Warn("unknown time zone in environment, using default", zap.String("key", key), zap.String("value", value))
		return fallback
	}
	return location
}

func parseTrustedProxies(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	proxies := make([]string, 0, len(parts))
	for _, part := range parts {
		proxy := strings.TrimSpace(part)
		if proxy == "" {
			continue
		}
		proxies = append(proxies, proxy)
	}

	if len(proxies) == 0 {
		return nil
	}

	return proxies
}
