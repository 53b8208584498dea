package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/polysign/mirsinn/internal/domain"
)

// ListingFetcher retrieves a readable text snapshot of a source's listing
// page. Implementations do not cache; the run keeps one snapshot per source.
type ListingFetcher interface {
	FetchListing(ctx context.Context, source domain.Source) (string, error)
}

// ChatCompleter sends a prompt pair to the generative capability and returns
// the raw response content. Schema validation is the caller's job.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// WriteBatch stages keyed writes and commits them atomically.
type WriteBatch interface {
	Set(path string, doc any)
	Commit(ctx context.Context) error
}

// DocumentStore persists keyed JSON documents with batch commit support.
type DocumentStore interface {
	Get(ctx context.Context, path string) (json.RawMessage, bool, error)
	Set(ctx context.Context, path string, doc any) error
	List(ctx context.Context, parent string) (map[string]json.RawMessage, error)
	Batch() WriteBatch
}

// PushSender delivers a prepared notification to subscribed devices.
type PushSender interface {
	Send(ctx context.Context, msg domain.PushMessage) error
}

// EmailSender delivers the operator digest after a run.
type EmailSender interface {
	SendDigest(ctx context.Context, subject, body string) error
}

// SocialPublisher cross-posts the day's primary question.
type SocialPublisher interface {
	Publish(ctx context.Context, post domain.SocialPost) error
}

// Scheduler controls when the daily job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
