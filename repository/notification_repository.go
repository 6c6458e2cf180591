// ABOUTME: This file implements NotificationRepository over the driver SQL
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
	"cienaga/driver"
)

type notificationRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *pgxpool.Pool, logger *slog.Logger) NotificationRepository {
	return &notificationRepository{db: db, logger: logger}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if err := driver.InsertNotification(ctx, r.db, notification); err != nil {
		r.logger.ErrorContext(ctx, "failed to log notification", "user_id", notification.UserID, "error", err)
		return fmt.Errorf("failed to log notification: %w", err)
	}

	r.logger.InfoContext(ctx, "notification logged",
		"user_id", notification.UserID, "screenings", len(notification.ScreeningIDs))

	return nil
}

func (r *notificationRepository) NotifiedScreeningIDs(ctx context.Context, userID string, since time.Time) ([]string, error) {
	ids, err := driver.NotifiedScreeningIDs(ctx, r.db, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list notified screenings: %w", err)
	}
	return ids, nil
}
