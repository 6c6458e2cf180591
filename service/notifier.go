// ABOUTME: This file dispatches the screening digests: invert to followers, group, email, audit
package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"cienaga/domain"
	"cienaga/driver"
	"cienaga/mailer"
	"cienaga/repository"
)

// Mailer is the slice of the mail sender the notifier needs.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NotifierOptions tune one notification run.
type NotifierOptions struct {
	Horizon time.Duration
	Pacing  time.Duration
}

// NotifySummary reports one run. The run is considered failed when Failed
// exceeds Sent.
type NotifySummary struct {
	Sent    int
	Failed  int
	Skipped int
}

// Failure reports whether the run should exit non-zero.
func (s NotifySummary) Failure() bool {
	return s.Failed > s.Sent
}

// Notifier emails each follower one digest of the upcoming screenings of
// their directors, with an immutable audit row per dispatch.
type Notifier struct {
	users         repository.UserRepository
	screenings    repository.ScreeningRepository
	cinemas       repository.CinemaRepository
	notifications repository.NotificationRepository
	mail          Mailer
	logger        *slog.Logger
	now           func() time.Time
	opts          NotifierOptions
}

// NewNotifier creates a notifier on the real clock.
func NewNotifier(users repository.UserRepository, screenings repository.ScreeningRepository, cinemas repository.CinemaRepository, notifications repository.NotificationRepository, mail Mailer, logger *slog.Logger, opts NotifierOptions) *Notifier {
	return NewNotifierAt(users, screenings, cinemas, notifications, mail, logger, opts, time.Now)
}

// NewNotifierAt creates a notifier with an injected clock for tests.
func NewNotifierAt(users repository.UserRepository, screenings repository.ScreeningRepository, cinemas repository.CinemaRepository, notifications repository.NotificationRepository, mail Mailer, logger *slog.Logger, opts NotifierOptions, now func() time.Time) *Notifier {
	if opts.Horizon == 0 {
		opts.Horizon = 14 * 24 * time.Hour
	}
	if opts.Pacing == 0 {
		opts.Pacing = time.Second
	}
	return &Notifier{
		users:         users,
		screenings:    screenings,
		cinemas:       cinemas,
		notifications: notifications,
		mail:          mail,
		logger:        logger,
		now:           now,
		opts:          opts,
	}
}

// Run builds and dispatches every due digest. Per-user failures are
// isolated; only infrastructure errors abort the run.
func (n *Notifier) Run(ctx context.Context) (NotifySummary, error) {
	from := n.now()
	to := from.Add(n.opts.Horizon)

	hits, err := n.screenings.Upcoming(ctx, from, to)
	if err != nil {
		return NotifySummary{}, err
	}
	if len(hits) == 0 {
		n.logger.InfoContext(ctx, "no upcoming screenings, nothing to notify")
		return NotifySummary{}, nil
	}

	hitsByUser, err := n.invertToFollowers(ctx, hits)
	if err != nil {
		return NotifySummary{}, err
	}

	users, err := n.users.ListUsers(ctx)
	if err != nil {
		return NotifySummary{}, err
	}

	cinemaNames, err := n.cinemaNames(ctx)
	if err != nil {
		return NotifySummary{}, err
	}

	var summary NotifySummary
	for _, user := range users {
		userHits := hitsByUser[user.ID]
		if len(userHits) == 0 {
			continue
		}

		sent, err := n.notifyUser(ctx, user, userHits, cinemaNames)
		switch {
		case err != nil:
			n.logger.ErrorContext(ctx, "notification failed", "user_id", user.ID, "error", err)
			summary.Failed++
		case sent:
			summary.Sent++
		default:
			summary.Skipped++
		}

		if err := n.pace(ctx); err != nil {
			return summary, err
		}
	}

	n.logger.InfoContext(ctx, "notification run finished",
		"sent", summary.Sent, "failed", summary.Failed, "skipped", summary.Skipped)

	return summary, nil
}

// invertToFollowers maps each screening hit to the users following the
// film's director.
func (n *Notifier) invertToFollowers(ctx context.Context, hits []driver.ScreeningHit) (map[string][]driver.ScreeningHit, error) {
	directorSet := make(map[string]bool)
	for _, hit := range hits {
		if hit.DirectorID != nil {
			directorSet[*hit.DirectorID] = true
		}
	}

	directorIDs := make([]string, 0, len(directorSet))
	for id := range directorSet {
		directorIDs = append(directorIDs, id)
	}
	sort.Strings(directorIDs)

	edges, err := n.users.DirectorFollowers(ctx, directorIDs)
	if err != nil {
		return nil, err
	}

	followers := make(map[string][]string)
	for _, edge := range edges {
		followers[edge.DirectorID] = append(followers[edge.DirectorID], edge.UserID)
	}

	hitsByUser := make(map[string][]driver.ScreeningHit)
	for _, hit := range hits {
		if hit.DirectorID == nil {
			continue
		}
		for _, userID := range followers[*hit.DirectorID] {
			hitsByUser[userID] = append(hitsByUser[userID], hit)
		}
	}

	return hitsByUser, nil
}

// notifyUser sends at most one digest. It reports (false, nil) when every
// matched screening was already notified before.
func (n *Notifier) notifyUser(ctx context.Context, user domain.User, hits []driver.ScreeningHit, cinemaNames map[string]string) (bool, error) {
	matches := GroupHits(hits)

	notified, err := n.notifications.NotifiedScreeningIDs(ctx, user.ID, time.Time{})
	if err != nil {
		return false, err
	}
	notifiedSet := make(map[string]bool, len(notified))
	for _, id := range notified {
		notifiedSet[id] = true
	}

	var fresh []Match
	for _, match := range matches {
		if !notifiedSet[match.Screening.ID] {
			fresh = append(fresh, match)
		}
	}
	if len(fresh) == 0 {
		return false, nil
	}

	items := make([]mailer.DigestItem, 0, len(fresh))
	screeningIDs := make([]string, 0, len(fresh))
	for _, match := range fresh {
		items = append(items, mailer.DigestItem{
			FilmTitle:  match.FilmTitle,
			CinemaName: cinemaNames[match.Screening.CinemaID],
			URL:        match.Screening.OriginalURL,
			Times:      match.Times,
		})
		screeningIDs = append(screeningIDs, match.Screening.ID)
	}

	subject, body, err := mailer.RenderDigest(user.FullName, items)
	if err != nil {
		return false, err
	}

	if err := n.mail.Send(ctx, user.Email, subject, body); err != nil {
		return false, err
	}

	notification := domain.Notification{
		UserID:       user.ID,
		ScreeningIDs: screeningIDs,
		Subject:      subject,
	}
	if err := n.notifications.Create(ctx, &notification); err != nil {
		return false, err
	}

	return true, nil
}

func (n *Notifier) cinemaNames(ctx context.Context) (map[string]string, error) {
	cinemas, err := n.cinemas.Enabled(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(cinemas))
	for _, cinema := range cinemas {
		names[cinema.ID] = cinema.Name
	}
	return names, nil
}

func (n *Notifier) pace(ctx context.Context) error {
	select {
	case <-time.After(n.opts.Pacing):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
