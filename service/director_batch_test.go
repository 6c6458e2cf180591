package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cienaga/domain"
)

func TestDirectorBatchSubmit(t *testing.T) {
	directors := &fakeDirectorRepo{}
	films := newFakeFilmRepo(directors)
	users := newFakeUserRepo()
	batch := NewDirectorBatch(films, directors, users, testLogger())

	pending := films.add(domain.Film{Title: "Coherence", ExternalURL: strPtr("https://boxd.it/6xza")})
	require.NoError(t, users.UpsertUserFilm(context.Background(), "user-1", pending.ID, nil))

	results := batch.Submit(context.Background(), []DirectorSubmission{
		{
			FilmID:       pending.ID,
			DirectorName: "James Ward Byrkit",
			DirectorSlug: strPtr("james-ward-byrkit"),
			PosterURL:    strPtr("https://img.example/poster.jpg"),
			BackdropURL:  strPtr("https://img.example/coh.jpg"),
			Rating:       floatPtr(3.6),
			Year:         intPtr(2013),
			MovieSlug:    strPtr("coherence"),
		},
		{FilmID: "missing-film", DirectorName: "12345"},
	})

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)

	// Director attached and details filled.
	require.NotNil(t, pending.DirectorID)
	director := directors.byID(*pending.DirectorID)
	require.NotNil(t, director)
	assert.Equal(t, "James Ward Byrkit", director.Name)
	require.NotNil(t, pending.Year)
	assert.Equal(t, 2013, *pending.Year)
	require.NotNil(t, pending.BackdropURL)
	assert.Equal(t, "https://img.example/coh.jpg", *pending.BackdropURL)

	// The null-to-value transition derived the follow edge.
	followed, err := users.DirectorIDs(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{director.ID}, followed)
}

func TestDirectorBatchDoesNotRematerializeOnResubmit(t *testing.T) {
	directors := &fakeDirectorRepo{}
	films := newFakeFilmRepo(directors)
	users := newFakeUserRepo()
	batch := NewDirectorBatch(films, directors, users, testLogger())

	pending := films.add(domain.Film{Title: "Coherence", ExternalURL: strPtr("https://boxd.it/6xza")})

	item := DirectorSubmission{FilmID: pending.ID, DirectorName: "James Ward Byrkit"}

	first := batch.Submit(context.Background(), []DirectorSubmission{item})
	require.True(t, first[0].Success)

	// A user imports the film after the director is already set; a resubmit
	// must not create an edge because no transition happens.
	require.NoError(t, users.UpsertUserFilm(context.Background(), "user-1", pending.ID, nil))

	second := batch.Submit(context.Background(), []DirectorSubmission{item})
	require.True(t, second[0].Success)

	followed, err := users.DirectorIDs(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, followed)
}

func TestDirectorBatchRejectsInvalidNames(t *testing.T) {
	directors := &fakeDirectorRepo{}
	batch := NewDirectorBatch(newFakeFilmRepo(directors), directors, newFakeUserRepo(), testLogger())

	tests := map[string]string{
		"digits only":  "0039",
		"single rune":  "X",
		"empty string": "   ",
	}

	for name, directorName := range tests {
		t.Run(name, func(t *testing.T) {
			results := batch.Submit(context.Background(), []DirectorSubmission{
				{FilmID: "film-1", DirectorName: directorName},
			})
			require.Len(t, results, 1)
			assert.False(t, results[0].Success)
		})
	}
}