package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/polysign/mirsinn/internal/apperr"
	"github.com/polysign/mirsinn/internal/domain"
)

const (
	// promptListingChars caps how much listing text goes into the prompt.
	promptListingChars = 6000

	maxTags     = 3
	maxTagChars = 40
	minOptions  = 2
	maxOptions  = 4
)

const systemPrompt = `You create the daily poll question for a civic-engagement app in Luxembourg.

From the news listing you are given, select ONE timely article of broad public interest that has NOT been covered recently (recently used and forbidden articles are listed in the request). Then produce a poll about it.

Respond with a single JSON object, no surrounding prose, with exactly this shape:
{
  "article": {"title": "...", "url": "...", "summary": {"lb": "...", "fr": "...", "de": "...", "en": "..."}},
  "tags": [{"lb": "...", "fr": "...", "de": "...", "en": "..."}],
  "question": {"lb": "...", "fr": "...", "de": "...", "en": "..."},
  "options": [{"id": "yes", "label": {"lb": "...", "fr": "...", "de": "...", "en": "..."}}],
  "analysis": {"lb": "...", "fr": "...", "de": "...", "en": "..."},
  "notification": {"title": {"lb": "...", "fr": "...", "de": "...", "en": "..."}, "body": {"lb": "...", "fr": "...", "de": "...", "en": "..."}}
}

Rules:
- All four languages (lb, fr, de, en) are required in every localized field.
- 1 to 3 tags; each tag value at most 40 characters.
- 2 to 4 options with short lowercase ids.
- Keep every text field under 200 characters.
- The question must be neutral and answerable by the options alone.`

// generateCandidate builds the prompt for one attempt, invokes the model,
// and parses the structured payload. Schema-level validation happens in the
// retry controller.
func (j *DailyJob) generateCandidate(ctx context.Context, source domain.Source, listing string, recent []domain.RecentArticle, forbidden []domain.ArticleRef) (*domain.GeneratedPayload, error) {
	userPrompt := buildUserPrompt(source, listing, recent, forbidden)

	content, err := j.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	content = stripCodeFence(content)
	if content == "" {
		return nil, apperr.NewGeneration("empty generation content")
	}

	var payload domain.GeneratedPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, apperr.NewGenerationWrap("parse generation payload", err)
	}

	payload.Tags = sanitizeTags(payload.Tags)
	return &payload, nil
}

func buildUserPrompt(source domain.Source, listing string, recent []domain.RecentArticle, forbidden []domain.ArticleRef) string {
	var b strings.Builder

	fmt.Fprintf(&b, "News source: %s (%s)\n\n", source.Label, source.ID)
	fmt.Fprintf(&b, "Listing snapshot:\n%s\n\n", excerpt(listing, promptListingChars))

	if len(recent) > 0 {
		b.WriteString("Recently covered articles (do not reuse):\n")
		for _, art := range recent {
			fmt.Fprintf(&b, "- [%s] %s %s\n", art.DateKey, art.Title, art.URL)
		}
		b.WriteString("\n")
	}

	if len(forbidden) > 0 {
		b.WriteString("Forbidden articles (already used or rejected this run, pick something else):\n")
		for _, art := range forbidden {
			fmt.Fprintf(&b, "- %s %s\n", art.Title.Normalize(), art.URL)
		}
		b.WriteString("\n")
	}

	b.WriteString("Select one article from the listing snapshot above and produce the JSON object.")
	return b.String()
}

// validatePayload rejects candidates missing a question or usable options.
// These consume an attempt like a generation failure, not a duplicate.
func validatePayload(p *domain.GeneratedPayload) error {
	if p.Question.Signature() == "" {
		return apperr.NewValidation("payload has no question text")
	}
	if len(p.Options) < minOptions || len(p.Options) > maxOptions {
		return apperr.NewValidation(fmt.Sprintf("payload has %d options, want %d-%d", len(p.Options), minOptions, maxOptions))
	}
	for _, opt := range p.Options {
		if strings.TrimSpace(opt.ID) == "" {
			return apperr.NewValidation("payload option has empty id")
		}
	}
	if strings.TrimSpace(p.Article.URL) == "" && p.Article.Title.Normalize() == "" {
		return apperr.NewValidation("payload article has neither url nor title")
	}
	return nil
}

// sanitizeTags trims tag fields to the length cap, deduplicates by composite
// lowercase key, and keeps at most maxTags entries.
func sanitizeTags(tags []map[string]string) []map[string]string {
	seen := map[string]struct{}{}
	out := make([]map[string]string, 0, maxTags)

	for _, tag := range tags {
		cleaned := make(map[string]string, len(tag))
		keyParts := make([]string, 0, len(domain.LanguagePriority))
		for _, lang := range domain.LanguagePriority {
			v := strings.TrimSpace(tag[lang])
			if len(v) > maxTagChars {
				v = v[:maxTagChars]
			}
			if v != "" {
				cleaned[lang] = v
			}
			keyParts = append(keyParts, strings.ToLower(v))
		}
		if len(cleaned) == 0 {
			continue
		}

		key := strings.Join(keyParts, domain.SignatureSeparator)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, cleaned)
		if len(out) == maxTags {
			break
		}
	}

	return out
}

// stripCodeFence unwraps ```json fenced content some models emit despite the
// JSON response format.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if idx := strings.Index(content, "\n"); idx >= 0 {
		content = content[idx+1:]
	}
	if idx := strings.LastIndex(content, "```"); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}

// excerpt returns the first n characters of text.
func excerpt(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}
