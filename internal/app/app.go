package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/polysign/mirsinn/internal/api"
	"github.com/polysign/mirsinn/internal/config"
	"github.com/polysign/mirsinn/internal/domain"
	"github.com/polysign/mirsinn/internal/listing"
	"github.com/polysign/mirsinn/internal/llm"
	"github.com/polysign/mirsinn/internal/logging"
	"github.com/polysign/mirsinn/internal/mail"
	"github.com/polysign/mirsinn/internal/ports"
	"github.com/polysign/mirsinn/internal/push"
	"github.com/polysign/mirsinn/internal/scheduler"
	"github.com/polysign/mirsinn/internal/social"
	"github.com/polysign/mirsinn/internal/storage"
	"github.com/polysign/mirsinn/internal/usecase"
)

// Application wires configs to the daily job and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	job    *usecase.DailyJob
	server *api.Server
	trig   ports.Scheduler
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	store := storage.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := listing.NewRegistry()
	registry.Register(listing.NewHTMLStrategy(nil))
	registry.Register(listing.NewRSSStrategy(nil))
	fetcher := listing.NewFetcher(registry, baseLogger.With("component", "listing"))

	completer := llm.NewClient(cfg.OpenAI)

	var pushSender ports.PushSender
	if cfg.Push.ServerKey != "" {
		pushSender = push.NewFCMSender(cfg.Push)
	}

	var mailSender ports.EmailSender
	if cfg.Mail.Endpoint != "" && cfg.Mail.To != "" {
		mailSender = mail.NewMailer(cfg.Mail)
	}

	var publisher ports.SocialPublisher
	if cfg.Social.AccessToken != "" {
		publisher = social.NewInstagramPublisher(cfg.Social)
	}

	job := usecase.NewDailyJob(
		usecase.JobConfig{
			Sources:         cfg.Sources,
			TargetQuestions: cfg.Job.TargetQuestions,
			MaxAttempts:     cfg.Job.MaxAttemptsPerSource,
			FallbackFactor:  cfg.Job.FallbackAttemptFactor,
			RecentDays:      cfg.Job.RecentDays,
			Model:           cfg.OpenAI.Model,
			PromptVersion:   cfg.OpenAI.PromptVersion,
			Location:        cfg.Scheduler.Location(),
		},
		usecase.JobDeps{
			Fetcher:   fetcher,
			Completer: completer,
			Store:     store,
			Push:      pushSender,
			Mail:      mailSender,
			Social:    publisher,
			Logger:    baseLogger.With("component", "dailyjob"),
		},
	)

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		db:     db,
		job:    job,
		server: api.New(job, cfg.Scheduler.Location(), baseLogger.With("component", "api")),
		trig:   scheduler.NewDailyScheduler(cfg.Scheduler.Hour, cfg.Scheduler.Minute, cfg.Scheduler.Location()),
	}, nil
}

// RunOnce executes the daily job for a single day and returns its result.
// An empty dateKey means the current Luxembourg calendar day.
func (a *Application) RunOnce(ctx context.Context, dateKey string) (*usecase.RunResult, error) {
	now := time.Now().In(a.cfg.Scheduler.Location())
	if dateKey != "" {
		parsed, err := domain.ParseDateKey(dateKey, a.cfg.Scheduler.Location())
		if err != nil {
			return nil, fmt.Errorf("invalid date key %q (want MM-DD-YYYY): %w", dateKey, err)
		}
		now = parsed
	}
	return a.job.Run(ctx, now)
}

// Serve starts the scheduled trigger and blocks on the HTTP server.
func (a *Application) Serve(ctx context.Context) error {
	err := a.trig.Start(ctx, func(t time.Time) {
		if _, runErr := a.job.Run(ctx, t); runErr != nil {
			a.logger.Error("scheduled run failed", "error", runErr)
		}
	})
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	a.logger.Info("serving", "addr", a.cfg.HTTP.Addr)
	return a.server.Start(a.cfg.HTTP.Addr)
}

// Close releases the scheduler, HTTP server, and database.
func (a *Application) Close(ctx context.Context) {
	_ = a.trig.Stop(ctx)
	_ = a.server.Shutdown(ctx)
	_ = a.db.Close()
}
