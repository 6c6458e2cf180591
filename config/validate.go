// ABOUTME: This file validates the assembled configuration before the service starts
package config

import (
	"fmt"
)

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.DB.Host == "" {
		return fmt.Errorf("db host cannot be empty")
	}

	if config.DB.Port <= 0 || config.DB.Port > 65535 {
		return fmt.Errorf("invalid db port: %d", config.DB.Port)
	}

	if config.DB.Name == "" {
		return fmt.Errorf("db name cannot be empty")
	}

	if config.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper timeout must be positive: %v", config.Scraper.Timeout)
	}

	if config.Scraper.HostInterval <= 0 {
		return fmt.Errorf("scraper host interval must be positive: %v", config.Scraper.HostInterval)
	}

	if config.Batch.MaxConcurrent <= 0 {
		return fmt.Errorf("batch max concurrent must be positive: %d", config.Batch.MaxConcurrent)
	}

	if config.Batch.Deadline <= 0 {
		return fmt.Errorf("batch deadline must be positive: %v", config.Batch.Deadline)
	}

	if config.Batch.PendingLimit <= 0 {
		return fmt.Errorf("batch pending limit must be positive: %d", config.Batch.PendingLimit)
	}

	if config.Mail.Port <= 0 || config.Mail.Port > 65535 {
		return fmt.Errorf("invalid smtp port: %d", config.Mail.Port)
	}

	if config.Mail.From == "" {
		return fmt.Errorf("smtp from address cannot be empty")
	}

	if config.Notify.Horizon <= 0 {
		return fmt.Errorf("notify horizon must be positive: %v", config.Notify.Horizon)
	}

	return nil
}
