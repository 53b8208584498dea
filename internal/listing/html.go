package listing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/polysign/mirsinn/internal/apperr"
	"github.com/polysign/mirsinn/internal/domain"
)

var errNoListingURL = errors.New("source has no listing url")

// chrome elements that carry no article text
const strippedSelectors = "script, style, noscript, nav, header, footer, iframe, form"

// HTMLStrategy fetches a listing page and converts its body to markdown text.
type HTMLStrategy struct {
	client    *http.Client
	converter *md.Converter
}

// NewHTMLStrategy wires an HTTP client; nil gets a 20s-timeout default.
func NewHTMLStrategy(client *http.Client) *HTMLStrategy {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLStrategy{
		client:    client,
		converter: md.NewConverter("", true, nil),
	}
}

// Name identifies the strategy inside the registry.
func (s *HTMLStrategy) Name() string {
	return "html"
}

// Fetch downloads the listing page, strips page chrome, and returns a
// markdown rendition of the remaining content.
func (s *HTMLStrategy) Fetch(ctx context.Context, source domain.Source) (string, error) {
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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", apperr.NewFetch(source.ID, source.ListingURL, fmt.Errorf("parse document: %w", err))
	}

	doc.Find(strippedSelectors).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	text := s.converter.Convert(body)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.NewFetch(source.ID, source.ListingURL, errors.New("listing page has no readable text"))
	}

	return text, nil
}
