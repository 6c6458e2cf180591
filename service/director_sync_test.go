package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cienaga/batch"
	"cienaga/domain"
	"cienaga/letterboxd"
)

// fakeFilmPageScraper serves canned film-page results by URL.
type fakeFilmPageScraper struct {
	pages map[string]letterboxd.FilmPageData
	seen  []string
}

func (f *fakeFilmPageScraper) Scrape(_ context.Context, url string) letterboxd.FilmPageData {
	f.seen = append(f.seen, url)
	return f.pages[url]
}

func fastBatch() batch.Options {
	return batch.Options{MaxConcurrent: 2, PerItemDelay: time.Millisecond, Deadline: time.Minute}
}

func TestDirectorSyncResolvesPendingFilms(t *testing.T) {
	directors := &fakeDirectorRepo{}
	films := newFakeFilmRepo(directors)
	users := newFakeUserRepo()
	submit := NewDirectorBatch(films, directors, users, testLogger())

	resolvable := films.add(domain.Film{Title: "Coherence", ExternalURL: strPtr("https://boxd.it/6xza")})
	unresolvable := films.add(domain.Film{Title: "Obscure", ExternalURL: strPtr("https://boxd.it/none")})
	films.add(domain.Film{Title: "Already Done", ExternalURL: strPtr("https://boxd.it/done"), DirectorID: strPtr("director-x")})

	pages := &fakeFilmPageScraper{pages: map[string]letterboxd.FilmPageData{
		"https://boxd.it/6xza": {
			Director: strPtr("James Ward Byrkit"),
			Year:     intPtr(2013),
		},
	}}

	sync := NewDirectorSync(films, submit, pages, testLogger(), DirectorSyncOptions{Batch: fastBatch()})

	summary, err := sync.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed, "films with a director are not re-scraped")
	assert.Equal(t, 1, summary.Resolved)
	assert.Equal(t, 1, summary.Unresolved)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, summary.Failure())

	assert.NotNil(t, resolvable.DirectorID)
	assert.Nil(t, unresolvable.DirectorID, "unresolved films stay pending")
	assert.ElementsMatch(t, []string{"https://boxd.it/6xza", "https://boxd.it/none"}, pages.seen)
}

func TestDirectorSyncHonorsLimit(t *testing.T) {
	directors := &fakeDirectorRepo{}
	films := newFakeFilmRepo(directors)
	submit := NewDirectorBatch(films, directors, newFakeUserRepo(), testLogger())

	for _, url := range []string{"https://boxd.it/a", "https://boxd.it/b", "https://boxd.it/c"} {
		films.add(domain.Film{Title: url, ExternalURL: strPtr(url)})
	}

	pages := &fakeFilmPageScraper{pages: map[string]letterboxd.FilmPageData{}}
	sync := NewDirectorSync(films, submit, pages, testLogger(), DirectorSyncOptions{Limit: 2, Batch: fastBatch()})

	summary, err := sync.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Len(t, pages.seen, 2)
}

func TestDirectorSyncNothingPending(t *testing.T) {
	directors := &fakeDirectorRepo{}
	films := newFakeFilmRepo(directors)
	submit := NewDirectorBatch(films, directors, newFakeUserRepo(), testLogger())

	sync := NewDirectorSync(films, submit, &fakeFilmPageScraper{}, testLogger(), DirectorSyncOptions{Batch: fastBatch()})

	summary, err := sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncSummary{}, summary)
}