package listing

import (
	"context"
	"log/slog"

	"github.com/polysign/mirsinn/internal/apperr"
	"github.com/polysign/mirsinn/internal/domain"
	"github.com/polysign/mirsinn/internal/ports"
)

// Fetcher implements ports.ListingFetcher by dispatching to the strategy
// registered for the source's tag.
type Fetcher struct {
	registry *Registry
	logger   *slog.Logger
}

var _ ports.ListingFetcher = (*Fetcher)(nil)

// NewFetcher wires the strategy registry.
func NewFetcher(registry *Registry, logger *slog.Logger) *Fetcher {
	return &Fetcher{registry: registry, logger: logger}
}

// FetchListing resolves the source's strategy and retrieves the snapshot.
// A missing listing URL or an unregistered strategy is a FetchError: the
// source is unusable for this run.
func (f *Fetcher) FetchListing(ctx context.Context, source domain.Source) (string, error) {
	if source.ListingURL == "" {
		return "", apperr.NewFetch(source.ID, "", errNoListingURL)
	}

	strategy, err := f.registry.Resolve(source.Strategy)
	if err != nil {
		return "", apperr.NewFetch(source.ID, source.ListingURL, err)
	}

	f.debug("fetch listing", "source", source.ID, "strategy", source.Strategy, "url", source.ListingURL)

	content, err := strategy.Fetch(ctx, source)
	if err != nil {
		return "", err
	}

	f.debug("listing fetched", "source", source.ID, "chars", len(content))
	return content, nil
}

func (f *Fetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
