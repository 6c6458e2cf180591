// ABOUTME: This file decides whether an incoming film record is one we already know
// ABOUTME: Weighted additive scoring over title, director, year and duration; threshold 50
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cienaga/domain"
	"cienaga/driver"
	"cienaga/repository"
)

// Scoring weights. These are contract, not tuning knobs; regression tests
// pin them.
const (
	scoreTitleExact     = 40
	scoreTitleAltExact  = 35
	scoreTitleSubstring = 20
	scoreDirectorExact  = 30
	scoreDirectorSub    = 15
	scoreYearEqual      = 20
	scoreYearAdjacent   = 10
	scoreDurationClose  = 10
	scoreDurationNear   = 5

	scoreCeiling   = 100
	scoreThreshold = 50
)

// IncomingFilm is the record a venue scrape produces for matching.
type IncomingFilm struct {
	Title         string
	NationalTitle *string
	Director      *string
	Year          *int
	Duration      *int
}

// Reconciler matches incoming film records against stored films, creating
// film and director rows when nothing matches. One Reconciler serves one
// batch run: its director cache must not outlive the run.
type Reconciler struct {
	films     repository.FilmRepository
	directors repository.DirectorRepository
	users     repository.UserRepository
	logger    *slog.Logger

	directorIDByName map[string]string
}

// NewReconciler creates a reconciler with a fresh director cache.
func NewReconciler(films repository.FilmRepository, directors repository.DirectorRepository, users repository.UserRepository, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		films:            films,
		directors:        directors,
		users:            users,
		logger:           logger,
		directorIDByName: make(map[string]string),
	}
}

// Reconcile returns the id of the film the incoming record refers to,
// creating one when no stored candidate scores at or above the threshold.
func (r *Reconciler) Reconcile(ctx context.Context, incoming IncomingFilm) (string, error) {
	normalized := domain.Normalize(incoming.Title)
	if normalized == "" {
		return "", fmt.Errorf("%w: empty film title", domain.ErrInvalidInput)
	}

	candidates, err := r.films.Candidates(ctx, normalized)
	if err != nil {
		return "", err
	}

	if best, score := pickCandidate(incoming, candidates); best != nil && score >= scoreThreshold {
		r.logger.InfoContext(ctx, "reconciled to existing film",
			"title", incoming.Title, "film_id", best.Film.ID, "score", score)

		if best.Film.DirectorID == nil && incoming.Director != nil {
			if err := r.attachDirector(ctx, best.Film.ID, *incoming.Director); err != nil {
				return "", err
			}
		}
		return best.Film.ID, nil
	}

	return r.createFilm(ctx, incoming)
}

func pickCandidate(incoming IncomingFilm, candidates []driver.FilmCandidate) (*driver.FilmCandidate, int) {
	var best *driver.FilmCandidate
	bestScore := -1

	// First candidate at the max score wins; candidate order is stable.
	for i := range candidates {
		if score := Score(incoming, candidates[i]); score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	return best, bestScore
}

// Score rates how likely the incoming record and the candidate are the
// same film. Additive with a ceiling of 100.
func Score(incoming IncomingFilm, candidate driver.FilmCandidate) int {
	score := titleScore(incoming, candidate)

	if incoming.Director != nil && candidate.DirectorName != nil {
		in := domain.Normalize(*incoming.Director)
		stored := domain.Normalize(*candidate.DirectorName)
		switch {
		case in == stored:
			score += scoreDirectorExact
		case contains(in, stored):
			score += scoreDirectorSub
		}
	}

	if incoming.Year != nil && candidate.Film.Year != nil {
		switch diff := abs(*incoming.Year - *candidate.Film.Year); {
		case diff == 0:
			score += scoreYearEqual
		case diff == 1:
			score += scoreYearAdjacent
		}
	}

	if incoming.Duration != nil && candidate.Film.Duration != nil {
		switch diff := abs(*incoming.Duration - *candidate.Film.Duration); {
		case diff <= 5:
			score += scoreDurationClose
		case diff <= 10:
			score += scoreDurationNear
		}
	}

	if score > scoreCeiling {
		score = scoreCeiling
	}
	return score
}

// titleScore compares the incoming title forms against the candidate's.
// An exact primary-to-primary match scores highest; a match that only
// involves a national-title variant scores slightly lower; a containment
// in either direction lower still.
func titleScore(incoming IncomingFilm, candidate driver.FilmCandidate) int {
	in := domain.Normalize(incoming.Title)
	var inAlt string
	if incoming.NationalTitle != nil {
		inAlt = domain.Normalize(*incoming.NationalTitle)
	}

	stored := domain.Normalize(candidate.Film.Title)
	var storedAlt string
	if candidate.Film.NationalTitle != nil {
		storedAlt = domain.Normalize(*candidate.Film.NationalTitle)
	}

	if in == stored {
		return scoreTitleExact
	}
	if exactAny(in, storedAlt) || exactAny(inAlt, stored) || exactAny(inAlt, storedAlt) {
		return scoreTitleAltExact
	}
	if contains(in, stored) || contains(in, storedAlt) || contains(inAlt, stored) || contains(inAlt, storedAlt) {
		return scoreTitleSubstring
	}
	return 0
}

func exactAny(a, b string) bool {
	return a != "" && b != "" && a == b
}

func contains(a, b string) bool {
	return a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// attachDirector fills a null director_ref and, when the write actually
// transitioned the film, derives the user_directors edges.
func (r *Reconciler) attachDirector(ctx context.Context, filmID, directorName string) error {
	directorID, err := r.findOrCreateDirector(ctx, directorName)
	if err != nil {
		return err
	}

	transitioned, err := r.films.AttachDirector(ctx, filmID, directorID)
	if err != nil {
		return err
	}
	if transitioned {
		if _, err := r.users.MaterializeUserDirectors(ctx, filmID, directorID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) createFilm(ctx context.Context, incoming IncomingFilm) (string, error) {
	film := domain.Film{
		Title:         incoming.Title,
		NationalTitle: incoming.NationalTitle,
		Year:          incoming.Year,
		Duration:      incoming.Duration,
	}

	if incoming.Director != nil {
		directorID, err := r.findOrCreateDirector(ctx, *incoming.Director)
		if err != nil {
			return "", err
		}
		film.DirectorID = &directorID
	}

	if _, err := r.films.Upsert(ctx, &film); err != nil {
		return "", err
	}

	r.logger.InfoContext(ctx, "created film from venue record",
		"title", film.Title, "film_id", film.ID, "has_director", film.DirectorID != nil)

	return film.ID, nil
}

// findOrCreateDirector resolves a director name to an id, creating a
// slug-less row when the name is new. Results are cached for the run.
func (r *Reconciler) findOrCreateDirector(ctx context.Context, name string) (string, error) {
	cleaned := strings.Join(strings.Fields(name), " ")
	normalized := domain.Normalize(cleaned)
	if normalized == "" {
		return "", fmt.Errorf("%w: empty director name", domain.ErrInvalidInput)
	}

	if id, ok := r.directorIDByName[normalized]; ok {
		return id, nil
	}

	existing, err := r.directors.FindByNormalizedName(ctx, normalized)
	if err != nil {
		return "", err
	}
	if existing != nil {
		r.directorIDByName[normalized] = existing.ID
		return existing.ID, nil
	}

	director := domain.Director{Name: cleaned}
	if err := r.directors.Upsert(ctx, &director); err != nil {
		return "", err
	}

	r.directorIDByName[normalized] = director.ID
	return director.ID, nil
}
