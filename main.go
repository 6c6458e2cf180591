// ABOUTME: This file is the entrypoint: subcommand dispatch for the server and the pipeline jobs
// ABOUTME: Every job exits 0 on success and 1 when its run counts as failed
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"cienaga/batch"
	"cienaga/config"
	"cienaga/driver"
	"cienaga/fetcher"
	"cienaga/handler"
	"cienaga/letterboxd"
	"cienaga/logger"
	"cienaga/mailer"
	"cienaga/repository"
	"cienaga/schedule"
	"cienaga/scraper"
	"cienaga/service"
)

const usage = `usage: cienaga <command> [flags]

commands:
  serve                          run the control-plane HTTP server
  import                         import a Letterboxd CSV export for one user
  scrape-directors               resolve directors for pending films
  scrape-screenings [slug ...]   scrape venue listings (all enabled cinemas by default)
  notify                         email users about upcoming matched screenings
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	log := logger.New("cienaga")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	switch os.Args[1] {
	case "serve":
		runErr = runServe(ctx, cfg, log)
	case "import":
		runErr = runImport(ctx, cfg, log, os.Args[2:])
	case "scrape-directors":
		runErr = runScrapeDirectors(ctx, cfg, log)
	case "scrape-screenings":
		runErr = runScrapeScreenings(ctx, cfg, log, os.Args[2:])
	case "notify":
		runErr = runNotify(ctx, cfg, log)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if runErr != nil {
		log.Error("command failed", "command", os.Args[1], "error", runErr)
		os.Exit(1)
	}
}

// repos bundles the repositories every command hangs off one pool.
type repos struct {
	films         repository.FilmRepository
	directors     repository.DirectorRepository
	cinemas       repository.CinemaRepository
	screenings    repository.ScreeningRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
}

func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*pgxpool.Pool, repos, error) {
	pool, err := driver.Init(ctx, cfg.DB.ConnString(), log)
	if err != nil {
		return nil, repos{}, err
	}
	if err := driver.Bootstrap(ctx, pool); err != nil {
		pool.Close()
		return nil, repos{}, err
	}
	return pool, repos{
		films:         repository.NewFilmRepository(pool, log),
		directors:     repository.NewDirectorRepository(pool, log),
		cinemas:       repository.NewCinemaRepository(pool, log),
		screenings:    repository.NewScreeningRepository(pool, log),
		users:         repository.NewUserRepository(pool, log),
		notifications: repository.NewNotificationRepository(pool, log),
	}, nil
}

func newFetcher(cfg *config.Config, log *slog.Logger) *fetcher.Client {
	return fetcher.New(fetcher.Config{
		UserAgent:     cfg.Scraper.UserAgent,
		Timeout:       cfg.Scraper.Timeout,
		RetryDelay:    cfg.Scraper.RetryDelay,
		RespectRobots: cfg.Scraper.RespectRobots,
	}, fetcher.NewHostLimiter(cfg.Scraper.HostInterval), log)
}

func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.Auth.Token == "" {
		return fmt.Errorf("CONTROL_TOKEN must be set for serve")
	}

	pool, r, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	screeningBatch := service.NewScreeningBatch(r.films, r.directors, r.users, r.screenings, log)
	directorBatch := service.NewDirectorBatch(r.films, r.directors, r.users, log)
	matcher := service.NewMatcher(r.users, r.screenings, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	handler.Register(e, handler.Handlers{
		Health:        handler.NewHealthHandler(),
		Films:         handler.NewFilmsHandler(r.films, log),
		Directors:     handler.NewDirectorsHandler(directorBatch, log),
		Screenings:    handler.NewScreeningsHandler(r.cinemas, screeningBatch, log),
		Notifications: handler.NewNotificationsHandler(r.screenings, r.users, r.notifications, log),
		Feed:          handler.NewFeedHandler(matcher, log),
	}, cfg.Auth.Token, log)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Server.Port))
	}()
	log.InfoContext(ctx, "control plane listening", "port", cfg.Server.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func runImport(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string) error {
	flags := flag.NewFlagSet("import", flag.ExitOnError)
	userID := flags.String("user", "", "user id the export belongs to")
	watchedPath := flags.String("watched", "", "path to watched.csv")
	ratingsPath := flags.String("ratings", "", "path to ratings.csv (optional)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *userID == "" || *watchedPath == "" {
		return fmt.Errorf("import requires --user and --watched")
	}

	pool, r, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	watched, err := os.Open(*watchedPath)
	if err != nil {
		return fmt.Errorf("failed to open watched file: %w", err)
	}
	defer watched.Close()

	var ratings io.Reader
	if *ratingsPath != "" {
		file, err := os.Open(*ratingsPath)
		if err != nil {
			return fmt.Errorf("failed to open ratings file: %w", err)
		}
		defer file.Close()
		ratings = file
	}

	importer := service.NewImporter(r.films, r.users, log)
	summary, err := importer.Import(ctx, *userID, watched, ratings)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "import finished",
		"films", summary.Films, "user_films", summary.UserFilms, "failed", summary.Failed)
	return nil
}

func runScrapeDirectors(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, r, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	filmScraper := letterboxd.NewFilmScraper(newFetcher(cfg, log), log)
	submit := service.NewDirectorBatch(r.films, r.directors, r.users, log)
	sync := service.NewDirectorSync(r.films, submit, filmScraper, log, service.DirectorSyncOptions{
		Limit: cfg.Batch.PendingLimit,
		Batch: batch.Options{
			MaxConcurrent: cfg.Batch.MaxConcurrent,
			PerItemDelay:  cfg.Batch.PerItemDelay,
			Deadline:      cfg.Batch.Deadline,
		},
	})

	summary, err := sync.Run(ctx)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "director sync finished",
		"processed", summary.Processed, "resolved", summary.Resolved,
		"unresolved", summary.Unresolved, "failed", summary.Failed,
		"deadline_exceeded", summary.DeadlineExceeded)
	if summary.Failure() {
		return fmt.Errorf("director sync failed: %d of %d items", summary.Failed, summary.Processed)
	}
	return nil
}

func runScrapeScreenings(ctx context.Context, cfg *config.Config, log *slog.Logger, slugs []string) error {
	pool, r, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	submit := service.NewScreeningBatch(r.films, r.directors, r.users, r.screenings, log)
	deps := scraper.Deps{
		Fetcher:     newFetcher(cfg, log),
		Parser:      schedule.NewParser(),
		Logger:      log,
		DetailDelay: cfg.Scraper.DetailDelay,
	}
	sync := service.NewScreeningSync(r.cinemas, submit, scraper.DefaultRegistry(), deps, log, batch.Options{
		MaxConcurrent: cfg.Batch.MaxConcurrent,
		PerItemDelay:  cfg.Batch.PerItemDelay,
		Deadline:      cfg.Batch.Deadline,
	})

	summary, err := sync.Run(ctx, slugs)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "screening sync finished",
		"venues", summary.Venues, "screenings", summary.Screenings,
		"failed", summary.Failed, "deadline_exceeded", summary.DeadlineExceeded)
	if summary.Failure() {
		return fmt.Errorf("screening sync failed: %d of %d venues", summary.Failed, summary.Venues)
	}
	return nil
}

func runNotify(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, r, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	mail := mailer.New(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, log)

	notifier := service.NewNotifier(r.users, r.screenings, r.cinemas, r.notifications, mail, log, service.NotifierOptions{
		Horizon: cfg.Notify.Horizon,
		Pacing:  cfg.Notify.Pacing,
	})

	summary, err := notifier.Run(ctx)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "notify finished",
		"sent", summary.Sent, "failed", summary.Failed, "skipped", summary.Skipped)
	if summary.Failure() {
		return fmt.Errorf("notify failed: %d sent, %d failed", summary.Sent, summary.Failed)
	}
	return nil
}
