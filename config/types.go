// ABOUTME: This file defines the configuration blocks and their defaults
// ABOUTME: Every value can be overridden through environment variables
package config

import (
	"fmt"
	"time"
)

// Config aggregates all service configuration blocks.
type Config struct {
	Server  ServerConfig  `json:"server"`
	DB      DBConfig      `json:"db"`
	Auth    AuthConfig    `json:"auth"`
	Scraper ScraperConfig `json:"scraper"`
	Batch   BatchConfig   `json:"batch"`
	Mail    MailConfig    `json:"mail"`
	Notify  NotifyConfig  `json:"notify"`
}

type ServerConfig struct {
	Port            int           `json:"port" env:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	ReadTimeout     time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`
}

type DBConfig struct {
	Host     string `json:"host" env:"DB_HOST" default:"localhost"`
	Port     int    `json:"port" env:"DB_PORT" default:"5432"`
	User     string `json:"user" env:"DB_USER" default:"cienaga"`
	Password string `json:"password" env:"DB_PASSWORD"`
	Name     string `json:"name" env:"DB_NAME" default:"cienaga"`
	SSLMode  string `json:"ssl_mode" env:"DB_SSL_MODE" default:"disable"`
}

// ConnString renders the keyword/value form pgx accepts.
func (c DBConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type AuthConfig struct {
	Token string `json:"-" env:"CONTROL_TOKEN"`
}

type ScraperConfig struct {
	UserAgent     string        `json:"user_agent" env:"SCRAPER_USER_AGENT" default:"CienagaBot/1.0 (+https://cienaga.ar/bot)"`
	Timeout       time.Duration `json:"timeout" env:"SCRAPER_TIMEOUT" default:"10s"`
	RetryDelay    time.Duration `json:"retry_delay" env:"SCRAPER_RETRY_DELAY" default:"2s"`
	HostInterval  time.Duration `json:"host_interval" env:"SCRAPER_HOST_INTERVAL" default:"2s"`
	DetailDelay   time.Duration `json:"detail_delay" env:"SCRAPER_DETAIL_DELAY" default:"800ms"`
	RespectRobots bool          `json:"respect_robots" env:"SCRAPER_RESPECT_ROBOTS" default:"true"`
}

type BatchConfig struct {
	MaxConcurrent int           `json:"max_concurrent" env:"BATCH_MAX_CONCURRENT" default:"5"`
	PerItemDelay  time.Duration `json:"per_item_delay" env:"BATCH_PER_ITEM_DELAY" default:"800ms"`
	Deadline      time.Duration `json:"deadline" env:"BATCH_DEADLINE" default:"8m"`
	PendingLimit  int           `json:"pending_limit" env:"BATCH_PENDING_LIMIT" default:"50"`
}

type MailConfig struct {
	Host     string `json:"host" env:"SMTP_HOST" default:"localhost"`
	Port     int    `json:"port" env:"SMTP_PORT" default:"587"`
	Username string `json:"username" env:"SMTP_USERNAME"`
	Password string `json:"-" env:"SMTP_PASSWORD"`
	From     string `json:"from" env:"SMTP_FROM" default:"avisos@cienaga.ar"`
}

type NotifyConfig struct {
	Horizon time.Duration `json:"horizon" env:"NOTIFY_HORIZON" default:"336h"`
	Pacing  time.Duration `json:"pacing" env:"NOTIFY_PACING" default:"1s"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
		},
		DB: DBConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "cienaga",
			Name:    "cienaga",
			SSLMode: "disable",
		},
		Scraper: ScraperConfig{
			UserAgent:     "CienagaBot/1.0 (+https://cienaga.ar/bot)",
			Timeout:       10 * time.Second,
			RetryDelay:    2 * time.Second,
			HostInterval:  2 * time.Second,
			DetailDelay:   800 * time.Millisecond,
			RespectRobots: true,
		},
		Batch: BatchConfig{
			MaxConcurrent: 5,
			PerItemDelay:  800 * time.Millisecond,
			Deadline:      8 * time.Minute,
			PendingLimit:  50,
		},
		Mail: MailConfig{
			Host: "localhost",
			Port: 587,
			From: "avisos@cienaga.ar",
		},
		Notify: NotifyConfig{
			Horizon: 14 * 24 * time.Hour,
			Pacing:  time.Second,
		},
	}
}
