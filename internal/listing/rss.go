package listing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/polysign/mirsinn/internal/apperr"
	"github.com/polysign/mirsinn/internal/domain"
)

// rssMaxItems caps how many feed entries end up in the snapshot.
const rssMaxItems = 40

// RSSStrategy fetches a feed and renders its items as a text listing.
type RSSStrategy struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewRSSStrategy wires an HTTP client; nil gets a 15s-timeout default.
func NewRSSStrategy(client *http.Client) *RSSStrategy {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RSSStrategy{client: client, parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (s *RSSStrategy) Name() string {
	return "rss"
}

// Fetch downloads and parses the feed, returning a titled item listing.
func (s *RSSStrategy) Fetch(ctx context.Context, source domain.Source) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.ListingURL, nil)
	if err != nil {
		return "", apperr.NewFetch(source.ID, source.ListingURL, err)
	}
	req.Header.Set("User-Agent", "mirsinn/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperr.NewFetch(source.ID, source.ListingURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.NewFetchStatus(source.ID, source.ListingURL, resp.StatusCode)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return "", apperr.NewFetch(source.ID, source.ListingURL, fmt.Errorf("parse feed: %w", err))
	}

	var b strings.Builder
	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", feed.Title)
	}

	for i, item := range feed.Items {
		if i >= rssMaxItems {
			break
		}
		fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(item.Title))
		if item.Link != "" {
			fmt.Fprintf(&b, "  %s\n", item.Link)
		}
		if item.PublishedParsed != nil {
			fmt.Fprintf(&b, "  %s\n", item.PublishedParsed.Format(time.RFC3339))
		}
		if desc := strings.TrimSpace(item.Description); desc != "" {
			fmt.Fprintf(&b, "  %s\n", desc)
		}
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", apperr.NewFetch(source.ID, source.ListingURL, fmt.Errorf("feed has no items"))
	}

	return text, nil
}
