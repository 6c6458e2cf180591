// ABOUTME: This file holds the raw SQL for users, user_films and the materialized user_directors edges
package driver

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
)

// ListUsers returns every account the notifier should consider.
func ListUsers(ctx context.Context, db *pgxpool.Pool) ([]domain.User, error) {
	query := `SELECT id, email, full_name FROM users ORDER BY created_at ASC`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpsertUserFilm links a user to an imported film; a re-import refreshes the
// rating when one is given.
func UpsertUserFilm(ctx context.Context, db *pgxpool.Pool, userID, filmID string, rating *float64) error {
	query := `
	INSERT INTO user_films (user_id, film_id, rating)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, film_id) DO UPDATE SET
		rating = COALESCE(EXCLUDED.rating, user_films.rating)
	`

	_, err := db.Exec(ctx, query, userID, filmID, rating)
	return classifyError(err)
}

// UserFilmIDs returns the ids of the films the user has imported.
func UserFilmIDs(ctx context.Context, db *pgxpool.Pool, userID string) ([]string, error) {
	return idList(ctx, db, `SELECT film_id FROM user_films WHERE user_id = $1`, userID)
}

// UserDirectorIDs returns the ids of the directors the user follows.
func UserDirectorIDs(ctx context.Context, db *pgxpool.Pool, userID string) ([]string, error) {
	return idList(ctx, db, `SELECT director_id FROM user_directors WHERE user_id = $1`, userID)
}

func idList(ctx context.Context, db *pgxpool.Pool, query string, args ...any) ([]string, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// MaterializeUserDirectors derives (user, director) edges for every user
// holding the given film. Called exactly when the film's director_id
// transitioned from null to a value. Returns how many edges were created.
func MaterializeUserDirectors(ctx context.Context, db *pgxpool.Pool, filmID, directorID string) (int, error) {
	query := `
	INSERT INTO user_directors (user_id, director_id)
	SELECT uf.user_id, $2
	FROM user_films uf
	WHERE uf.film_id = $1
	ON CONFLICT DO NOTHING
	`

	tag, err := db.Exec(ctx, query, filmID, directorID)
	if err != nil {
		return 0, classifyError(err)
	}
	return int(tag.RowsAffected()), nil
}

// FollowerEdge is one (director, follower) pair.
type FollowerEdge struct {
	DirectorID string
	UserID     string
}

// DirectorFollowers returns the follow edges for the given directors.
func DirectorFollowers(ctx context.Context, db *pgxpool.Pool, directorIDs []string) ([]FollowerEdge, error) {
	if len(directorIDs) == 0 {
		return nil, nil
	}

	query := `SELECT director_id, user_id FROM user_directors WHERE director_id = ANY($1)`

	rows, err := db.Query(ctx, query, directorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []FollowerEdge
	for rows.Next() {
		var edge FollowerEdge
		if err := rows.Scan(&edge.DirectorID, &edge.UserID); err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	return edges, rows.Err()
}
