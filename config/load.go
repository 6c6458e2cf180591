// ABOUTME: This file builds the configuration from defaults plus environment overrides
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadConfig builds the configuration from defaults and overrides provided
// via environment variables. A .env file in the working directory is
// applied first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config := defaultConfig()

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func loadFromEnv(config *Config) error {
	if err := loadServerConfig(&config.Server); err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	if err := loadDBConfig(&config.DB); err != nil {
		return fmt.Errorf("failed to load db config: %w", err)
	}

	config.Auth.Token = stringEnv("CONTROL_TOKEN", config.Auth.Token)

	if err := loadScraperConfig(&config.Scraper); err != nil {
		return fmt.Errorf("failed to load scraper config: %w", err)
	}

	if err := loadBatchConfig(&config.Batch); err != nil {
		return fmt.Errorf("failed to load batch config: %w", err)
	}

	if err := loadMailConfig(&config.Mail); err != nil {
		return fmt.Errorf("failed to load mail config: %w", err)
	}

	if err := loadNotifyConfig(&config.Notify); err != nil {
		return fmt.Errorf("failed to load notify config: %w", err)
	}

	return nil
}

func loadServerConfig(cfg *ServerConfig) error {
	var err error

	if cfg.Port, err = parseIntEnv("SERVER_PORT", cfg.Port); err != nil {
		return err
	}

	if cfg.ShutdownTimeout, err = parseDurationEnv("SERVER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}

	if cfg.ReadTimeout, err = parseDurationEnv("SERVER_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return err
	}

	if cfg.WriteTimeout, err = parseDurationEnv("SERVER_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return err
	}

	return nil
}

func loadDBConfig(cfg *DBConfig) error {
	var err error

	cfg.Host = stringEnv("DB_HOST", cfg.Host)
	cfg.User = stringEnv("DB_USER", cfg.User)
	cfg.Password = stringEnv("DB_PASSWORD", cfg.Password)
	cfg.Name = stringEnv("DB_NAME", cfg.Name)
	cfg.SSLMode = stringEnv("DB_SSL_MODE", cfg.SSLMode)

	if cfg.Port, err = parseIntEnv("DB_PORT", cfg.Port); err != nil {
		return err
	}

	return nil
}

func loadScraperConfig(cfg *ScraperConfig) error {
	var err error

	cfg.UserAgent = stringEnv("SCRAPER_USER_AGENT", cfg.UserAgent)

	if cfg.Timeout, err = parseDurationEnv("SCRAPER_TIMEOUT", cfg.Timeout); err != nil {
		return err
	}

	if cfg.RetryDelay, err = parseDurationEnv("SCRAPER_RETRY_DELAY", cfg.RetryDelay); err != nil {
		return err
	}

	if cfg.HostInterval, err = parseDurationEnv("SCRAPER_HOST_INTERVAL", cfg.HostInterval); err != nil {
		return err
	}

	if cfg.DetailDelay, err = parseDurationEnv("SCRAPER_DETAIL_DELAY", cfg.DetailDelay); err != nil {
		return err
	}

	if cfg.RespectRobots, err = parseBoolEnv("SCRAPER_RESPECT_ROBOTS", cfg.RespectRobots); err != nil {
		return err
	}

	return nil
}

func loadBatchConfig(cfg *BatchConfig) error {
	var err error

	if cfg.MaxConcurrent, err = parseIntEnv("BATCH_MAX_CONCURRENT", cfg.MaxConcurrent); err != nil {
		return err
	}

	if cfg.PerItemDelay, err = parseDurationEnv("BATCH_PER_ITEM_DELAY", cfg.PerItemDelay); err != nil {
		return err
	}

	if cfg.Deadline, err = parseDurationEnv("BATCH_DEADLINE", cfg.Deadline); err != nil {
		return err
	}

	if cfg.PendingLimit, err = parseIntEnv("BATCH_PENDING_LIMIT", cfg.PendingLimit); err != nil {
		return err
	}

	return nil
}

func loadMailConfig(cfg *MailConfig) error {
	var err error

	cfg.Host = stringEnv("SMTP_HOST", cfg.Host)
	cfg.Username = stringEnv("SMTP_USERNAME", cfg.Username)
	cfg.Password = stringEnv("SMTP_PASSWORD", cfg.Password)
	cfg.From = stringEnv("SMTP_FROM", cfg.From)

	if cfg.Port, err = parseIntEnv("SMTP_PORT", cfg.Port); err != nil {
		return err
	}

	return nil
}

func loadNotifyConfig(cfg *NotifyConfig) error {
	var err error

	if cfg.Horizon, err = parseDurationEnv("NOTIFY_HORIZON", cfg.Horizon); err != nil {
		return err
	}

	if cfg.Pacing, err = parseDurationEnv("NOTIFY_PACING", cfg.Pacing); err != nil {
		return err
	}

	return nil
}

func stringEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
