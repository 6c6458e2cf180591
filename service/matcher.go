// ABOUTME: This file builds a user's personalized screening feed
// ABOUTME: Union of imported films and followed directors over a future window
package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"cienaga/domain"
	"cienaga/driver"
	"cienaga/repository"
)

// Match is one screening in a user's feed with its future times ascending.
type Match struct {
	Screening domain.Screening
	FilmTitle string
	Times     []time.Time
}

// Matcher answers "which screenings should this user see".
type Matcher struct {
	users      repository.UserRepository
	screenings repository.ScreeningRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewMatcher creates a matcher on the real clock.
func NewMatcher(users repository.UserRepository, screenings repository.ScreeningRepository, logger *slog.Logger) *Matcher {
	return NewMatcherAt(users, screenings, logger, time.Now)
}

// NewMatcherAt creates a matcher with an injected clock for tests.
func NewMatcherAt(users repository.UserRepository, screenings repository.ScreeningRepository, logger *slog.Logger, now func() time.Time) *Matcher {
	return &Matcher{users: users, screenings: screenings, logger: logger, now: now}
}

// MatchesForUser returns the screenings of the user's imported films and
// followed directors with times in (now, now+horizon], deduplicated by
// screening and ordered by earliest time.
func (m *Matcher) MatchesForUser(ctx context.Context, userID string, horizon time.Duration) ([]Match, error) {
	filmIDs, err := m.users.FilmIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	directorIDs, err := m.users.DirectorIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	from := m.now()
	to := from.Add(horizon)

	filmHits, err := m.screenings.ForFilms(ctx, filmIDs, from, to)
	if err != nil {
		return nil, err
	}
	directorHits, err := m.screenings.ForDirectors(ctx, directorIDs, from, to)
	if err != nil {
		return nil, err
	}

	matches := GroupHits(append(filmHits, directorHits...))

	m.logger.InfoContext(ctx, "personalized feed built",
		"user_id", userID, "screenings", len(matches))

	return matches, nil
}

// GroupHits collapses (screening, instant) rows into one Match per
// screening, times ascending, matches ordered by earliest time.
func GroupHits(hits []driver.ScreeningHit) []Match {
	byScreening := make(map[string]*Match)
	var order []string

	for _, hit := range hits {
		match, ok := byScreening[hit.Screening.ID]
		if !ok {
			match = &Match{Screening: hit.Screening, FilmTitle: hit.FilmTitle}
			byScreening[hit.Screening.ID] = match
			order = append(order, hit.Screening.ID)
		}
		if !containsTime(match.Times, hit.Instant) {
			match.Times = append(match.Times, hit.Instant)
		}
	}

	matches := make([]Match, 0, len(order))
	for _, id := range order {
		match := byScreening[id]
		sort.Slice(match.Times, func(i, j int) bool { return match.Times[i].Before(match.Times[j]) })
		matches = append(matches, *match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Times[0].Before(matches[j].Times[0])
	})

	return matches
}

func containsTime(times []time.Time, instant time.Time) bool {
	for _, t := range times {
		if t.Equal(instant) {
			return true
		}
	}
	return false
}
