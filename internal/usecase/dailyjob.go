package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/polysign/mirsinn/internal/apperr"
	"github.com/polysign/mirsinn/internal/domain"
	"github.com/polysign/mirsinn/internal/ports"
)

// listingExcerptChars is how much of the source snapshot each question keeps.
const listingExcerptChars = 2000

// JobConfig carries the run parameters, resolved once at construction.
type JobConfig struct {
	Sources         []domain.Source
	TargetQuestions int
	MaxAttempts     int
	FallbackFactor  int
	RecentDays      int
	Model           string
	PromptVersion   string
	Location        *time.Location
}

// JobDeps wires all driven adapters into the daily job. Push, Mail, and
// Social are optional; a nil sink is skipped.
type JobDeps struct {
	Fetcher   ports.ListingFetcher
	Completer ports.ChatCompleter
	Store     ports.DocumentStore
	Push      ports.PushSender
	Mail      ports.EmailSender
	Social    ports.SocialPublisher
	Logger    *slog.Logger
}

// DailyJob generates, deduplicates, and persists one day's questions.
type DailyJob struct {
	cfg       JobConfig
	fetcher   ports.ListingFetcher
	completer ports.ChatCompleter
	store     ports.DocumentStore
	push      ports.PushSender
	mail      ports.EmailSender
	social    ports.SocialPublisher
	logger    *slog.Logger
}

// NewDailyJob constructs the orchestration component.
func NewDailyJob(cfg JobConfig, deps JobDeps) *DailyJob {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyJob{
		cfg:       cfg,
		fetcher:   deps.Fetcher,
		completer: deps.Completer,
		store:     deps.Store,
		push:      deps.Push,
		mail:      deps.Mail,
		social:    deps.Social,
		logger:    logger,
	}
}

// RunStatus describes the outcome of a run.
type RunStatus string

const (
	// RunStatusCreated means the day batch was committed.
	RunStatusCreated RunStatus = "created"
	// RunStatusExists means the idempotency guard found a committed day.
	RunStatusExists RunStatus = "exists"
)

// RunResult summarizes one run for callers and the HTTP trigger.
type RunResult struct {
	Status            RunStatus `json:"status"`
	DateKey           string    `json:"dateKey"`
	QuestionCount     int       `json:"questionCount"`
	QuestionIDs       []string  `json:"questionIds"`
	PrimaryQuestionID string    `json:"primaryQuestionId,omitempty"`
}

// Run executes the daily pipeline for the calendar day containing now:
// idempotency guard, recent-article seed, primary source pass, quota-driven
// fallback pass, atomic commit, then fire-and-forget notifications. Only
// two conditions are fatal: zero questions and a failed commit.
func (j *DailyJob) Run(ctx context.Context, now time.Time) (*RunResult, error) {
	dateKey := domain.DateKey(now, j.cfg.Location)
	logger := j.logger.With("dateKey", dateKey)

	exists, err := j.dayExists(ctx, dateKey)
	if err != nil {
		return nil, fmt.Errorf("idempotency check: %w", err)
	}
	if exists {
		logger.Info("day already generated, skipping run")
		return &RunResult{Status: RunStatusExists, DateKey: dateKey}, nil
	}

	recent := j.fetchRecentArticles(ctx, now)
	logger.Info("run starting", "sources", len(j.cfg.Sources), "recentArticles", len(recent), "target", j.cfg.TargetQuestions)

	state := newRunState(dateKey, recent)

	// Primary pass: each source once, in configured order.
	for _, source := range j.cfg.Sources {
		if len(state.entries) >= j.cfg.TargetQuestions {
			break
		}
		j.attemptSource(ctx, state, source, now)
	}

	// Fallback pass: round-robin re-attempts, bounded so a run with only
	// exhausted or duplicate sources still terminates.
	if len(state.entries) < j.cfg.TargetQuestions && len(j.cfg.Sources) > 0 {
		limit := len(j.cfg.Sources) * j.cfg.FallbackFactor
		for attempt := 0; attempt < limit && len(state.entries) < j.cfg.TargetQuestions; attempt++ {
			source := j.cfg.Sources[attempt%len(j.cfg.Sources)]
			j.attemptSource(ctx, state, source, now)
		}
	}

	if len(state.entries) == 0 {
		return nil, fmt.Errorf("run %s: %w", dateKey, apperr.ErrNoQuestions)
	}
	if len(state.entries) < j.cfg.TargetQuestions {
		logger.Warn("quota unmet, continuing with partial result", "got", len(state.entries), "target", j.cfg.TargetQuestions)
	}

	day := assembleDay(dateKey, state.entries)

	batch := j.store.Batch()
	batch.Set(dayPath(dateKey), day)
	for _, entry := range state.entries {
		batch.Set(entry.path, entry.doc)
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info("day committed", "questions", day.QuestionCount, "primary", day.PrimaryQuestionID)

	j.notifySinks(ctx, day, state.entries)

	return &RunResult{
		Status:            RunStatusCreated,
		DateKey:           dateKey,
		QuestionCount:     day.QuestionCount,
		QuestionIDs:       day.QuestionIDs,
		PrimaryQuestionID: day.PrimaryQuestionID,
	}, nil
}

// dayExists implements the idempotency guard: a day counts as generated when
// its document carries a question or its question sub-collection is
// non-empty. Advisory only; there is no cross-run lock.
func (j *DailyJob) dayExists(ctx context.Context, dateKey string) (bool, error) {
	raw, ok, err := j.store.Get(ctx, dayPath(dateKey))
	if err != nil {
		return false, err
	}
	if ok {
		var day domain.DayDocument
		if err := json.Unmarshal(raw, &day); err == nil && !day.Question.IsZero() {
			return true, nil
		}
	}

	docs, err := j.store.List(ctx, questionsPath(dateKey))
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// assembleDay builds the aggregate document. The first accepted entry is the
// primary question; its fields are embedded at the day level for
// single-question consumers.
func assembleDay(dateKey string, entries []questionEntry) domain.DayDocument {
	primary := entries[0]

	ids := make([]string, 0, len(entries))
	summary := make([]domain.QuestionSummary, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.id)
		summary = append(summary, domain.QuestionSummary{
			ID:     entry.id,
			Order:  entry.doc.Order,
			Title:  entry.doc.Article.Title.Normalize(),
			Source: entry.doc.NewsSource.ID,
			URL:    entry.doc.Article.URL,
		})
	}

	day := domain.DayDocument{
		QuestionDocument:  primary.doc,
		QuestionCount:     len(entries),
		PrimaryQuestionID: primary.id,
		QuestionIDs:       ids,
		QuestionsSummary:  summary,
	}
	day.DateKey = dateKey
	return day
}

// notifySinks prepares and delivers the post-commit payloads. Sink failures
// are logged and never fail the run.
func (j *DailyJob) notifySinks(ctx context.Context, day domain.DayDocument, entries []questionEntry) {
	if j.push != nil {
		msg := domain.PushMessage{
			Title: day.Notification.Title.Normalize(),
			Body:  day.Notification.Body.Normalize(),
			Data: map[string]string{
				"dateKey":    day.DateKey,
				"questionId": day.PrimaryQuestionID,
			},
		}
		if err := j.push.Send(ctx, msg); err != nil {
			j.logger.Warn("push dispatch failed", "dateKey", day.DateKey, "error", err)
		}
	}

	if j.mail != nil {
		subject := fmt.Sprintf("Question of the day %s: %d questions", day.DateKey, day.QuestionCount)
		var b strings.Builder
		for _, entry := range entries {
			fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", entry.doc.Order, entry.doc.Article.Title.Normalize(), entry.doc.NewsSource.ID, entry.doc.Article.URL)
		}
		if err := j.mail.SendDigest(ctx, subject, b.String()); err != nil {
			j.logger.Warn("digest mail failed", "dateKey", day.DateKey, "error", err)
		}
	}

	if j.social != nil {
		post := domain.SocialPost{
			Caption: fmt.Sprintf("%s\n\n%s", day.Question.Normalize(), day.Article.Title.Normalize()),
			DateKey: day.DateKey,
		}
		if err := j.social.Publish(ctx, post); err != nil {
			j.logger.Warn("social publish failed", "dateKey", day.DateKey, "error", err)
		}
	}
}

func dayPath(dateKey string) string {
	return "days/" + dateKey
}

func questionsPath(dateKey string) string {
	return "days/" + dateKey + "/questions"
}

func questionPath(dateKey, id string) string {
	return questionsPath(dateKey) + "/" + id
}
