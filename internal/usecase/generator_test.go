package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/polysign/mirsinn/internal/apperr"
	"github.com/polysign/mirsinn/internal/domain"
)

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeTags(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 60)
	tags := []map[string]string{
		{"lb": "Politik", "en": "Politics"},
		{"lb": "politik", "en": "politics"}, // duplicate modulo case
		{"lb": long},
		{"lb": "Tram"},
		{"lb": "Budget"}, // beyond the cap
		{},
	}

	out := sanitizeTags(tags)
	if len(out) != 3 {
		t.Fatalf("expected 3 tags after dedup and cap, got %d: %v", len(out), out)
	}
	if out[0]["lb"] != "Politik" {
		t.Fatalf("first tag mangled: %v", out[0])
	}
	if got := out[1]["lb"]; len(got) != 40 {
		t.Fatalf("long tag field not trimmed to 40 chars: %d", len(got))
	}
}

func TestValidatePayload(t *testing.T) {
	t.Parallel()

	valid := func() *domain.GeneratedPayload {
		return &domain.GeneratedPayload{
			Article: domain.ArticleRef{
				Title: domain.PlainText("Tram extension approved"),
				URL:   "https://example.lu/tram",
			},
			Question: domain.LocalizedText(map[string]string{"lb": "Fir oder géint?", "en": "For or against?"}),
			Options: []domain.Option{
				{ID: "yes", Label: domain.PlainText("Yes")},
				{ID: "no", Label: domain.PlainText("No")},
			},
		}
	}

	if err := validatePayload(valid()); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	p := valid()
	p.Question = domain.Text{}
	if err := validatePayload(p); err == nil {
		t.Fatal("missing question accepted")
	}

	p = valid()
	p.Options = p.Options[:1]
	if err := validatePayload(p); err == nil {
		t.Fatal("single option accepted")
	}

	p = valid()
	p.Options = append(p.Options, domain.Option{ID: "a"}, domain.Option{ID: "b"}, domain.Option{ID: "c"})
	if err := validatePayload(p); err == nil {
		t.Fatal("five options accepted")
	}

	p = valid()
	p.Options[1].ID = " "
	if err := validatePayload(p); err == nil {
		t.Fatal("blank option id accepted")
	}

	p = valid()
	p.Article = domain.ArticleRef{}
	if err := validatePayload(p); err == nil {
		t.Fatal("article without url and title accepted")
	}

	var verr *apperr.ValidationError
	if err := validatePayload(p); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestBuildUserPromptSections(t *testing.T) {
	t.Parallel()

	source := domain.Source{ID: "rtl", Label: "RTL", ListingURL: "https://rtl.lu", Strategy: "html"}
	recent := []domain.RecentArticle{{DateKey: "02-19-2025", Title: "Old Story", URL: "https://example.lu/old"}}
	forbidden := []domain.ArticleRef{{Title: domain.PlainText("Rejected Story"), URL: "https://example.lu/rejected"}}

	prompt := buildUserPrompt(source, "the listing text", recent, forbidden)

	for _, want := range []string{"the listing text", "Old Story", "Rejected Story", "RTL"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}

	// Long listings are capped before entering the prompt.
	long := strings.Repeat("a", promptListingChars+500)
	prompt = buildUserPrompt(source, long, nil, nil)
	if strings.Contains(prompt, long) {
		t.Fatal("listing was not truncated in the prompt")
	}
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	if got := excerpt("short", 2000); got != "short" {
		t.Fatalf("short text modified: %q", got)
	}
	if got := excerpt(strings.Repeat("b", 3000), 2000); len(got) != 2000 {
		t.Fatalf("excerpt length: %d", len(got))
	}
}
