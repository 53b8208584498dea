package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polysign/mirsinn/internal/domain"
)

// questionEntry is one finalized question awaiting the batch commit.
type questionEntry struct {
	id   string
	path string
	doc  domain.QuestionDocument
}

type listingResult struct {
	content string
	err     error
}

// runState holds everything a single run owns: the exclusion set, the
// growing forbidden-article context, the accepted entries in order, and the
// per-source listing cache. It is discarded at run end.
type runState struct {
	dateKey   string
	exclusion *ExclusionSet
	recent    []domain.RecentArticle
	forbidden []domain.ArticleRef
	entries   []questionEntry
	listings  map[string]listingResult
}

func newRunState(dateKey string, recent []domain.RecentArticle) *runState {
	return &runState{
		dateKey:   dateKey,
		exclusion: NewExclusionSet(recent),
		recent:    recent,
		listings:  map[string]listingResult{},
	}
}

// listing returns the cached snapshot for a source, fetching at most once
// per run. Fetch failures are cached too: a dead source stays abandoned for
// the whole run, including the fallback pass.
func (j *DailyJob) listing(ctx context.Context, state *runState, source domain.Source) listingResult {
	if lr, ok := state.listings[source.ID]; ok {
		return lr
	}

	content, err := j.fetcher.FetchListing(ctx, source)
	lr := listingResult{content: content, err: err}
	state.listings[source.ID] = lr
	return lr
}

// attemptSource drives the dedup/retry state machine for one source: up to
// maxAttempts generation attempts against the cached listing, duplicates
// extending the forbidden context between attempts. The first valid
// non-duplicate candidate wins; no scoring across candidates. Returns
// whether a question was accepted.
func (j *DailyJob) attemptSource(ctx context.Context, state *runState, source domain.Source, now time.Time) bool {
	logger := j.logger.With("source", source.ID, "dateKey", state.dateKey)

	lr := j.listing(ctx, state, source)
	if lr.err != nil {
		logger.Warn("listing unavailable, skipping source", "error", lr.err)
		return false
	}

	for attempt := 1; attempt <= j.cfg.MaxAttempts; attempt++ {
		payload, err := j.generateCandidate(ctx, source, lr.content, state.recent, state.forbidden)
		if err != nil {
			logger.Warn("generation failed", "attempt", attempt, "error", err)
			continue
		}

		if err := validatePayload(payload); err != nil {
			logger.Warn("payload invalid", "attempt", attempt, "error", err)
			continue
		}

		url := strings.ToLower(strings.TrimSpace(payload.Article.URL))
		title := strings.ToLower(strings.TrimSpace(payload.Article.Title.Normalize()))
		sig := payload.Question.Signature()

		if state.exclusion.IsDuplicate(url, title, sig) {
			logger.Info("duplicate candidate", "attempt", attempt, "url", url)
			state.forbidden = append(state.forbidden, payload.Article)
			continue
		}

		entry := j.assembleQuestion(source, payload, lr.content, state.dateKey, len(state.entries)+1, now)
		state.entries = append(state.entries, entry)
		state.exclusion.AddArticle(url, title)
		state.exclusion.AddSignature(sig)
		state.forbidden = append(state.forbidden, payload.Article)

		logger.Info("question accepted", "attempt", attempt, "order", entry.doc.Order, "id", entry.id)
		return true
	}

	logger.Warn("attempts exhausted for source", "attempts", j.cfg.MaxAttempts)
	return false
}

// assembleQuestion builds the persisted document for an accepted candidate,
// with a zero-initialized vote tally covering every option id.
func (j *DailyJob) assembleQuestion(source domain.Source, payload *domain.GeneratedPayload, listing, dateKey string, order int, now time.Time) questionEntry {
	id := uuid.NewString()

	doc := domain.QuestionDocument{
		DateKey:      dateKey,
		Order:        order,
		Question:     payload.Question,
		Options:      payload.Options,
		Article:      payload.Article,
		Tags:         payload.Tags,
		Analysis:     payload.Analysis,
		Notification: payload.Notification,
		NewsSource: domain.NewsSource{
			ID:    source.ID,
			Label: source.Label,
			URL:   source.ListingURL,
		},
		ListingExcerpt: excerpt(listing, listingExcerptChars),
		Results:        domain.ZeroResults(payload.Options, now),
		Source: domain.GenerationMeta{
			GeneratedAt:     now,
			Model:           j.cfg.Model,
			PromptVersion:   j.cfg.PromptVersion,
			ListingStrategy: source.Strategy,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	return questionEntry{
		id:   id,
		path: questionPath(dateKey, id),
		doc:  doc,
	}
}
