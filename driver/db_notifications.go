// ABOUTME: This file holds the raw SQL for the notifications audit log
package driver

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
)

// InsertNotification appends one immutable audit row and fills in its id
// and sent_at.
func InsertNotification(ctx context.Context, db *pgxpool.Pool, notification *domain.Notification) error {
	query := `
	INSERT INTO notifications (user_id, screening_ids, subject)
	VALUES ($1, $2, $3)
	RETURNING id, sent_at
	`

	err := db.QueryRow(ctx, query,
		notification.UserID, notification.ScreeningIDs, notification.Subject,
	).Scan(&notification.ID, &notification.SentAt)
	return classifyError(err)
}

// NotifiedScreeningIDs returns the distinct screening ids the user has been
// emailed about since the given instant.
func NotifiedScreeningIDs(ctx context.Context, db *pgxpool.Pool, userID string, since time.Time) ([]string, error) {
	query := `
	SELECT DISTINCT unnest(screening_ids)
	FROM notifications
	WHERE user_id = $1 AND sent_at > $2
	`

	return idList(ctx, db, query, userID, since.UTC())
}
