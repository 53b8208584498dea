package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizePriority(t *testing.T) {
	t.Parallel()

	text := LocalizedText(map[string]string{
		"en": "english",
		"de": "deutsch",
		"fr": "français",
	})
	if got := text.Normalize(); got != "français" {
		t.Fatalf("expected french before german and english, got %q", got)
	}

	text = LocalizedText(map[string]string{
		"lb": "lëtzebuergesch",
		"en": "english",
	})
	if got := text.Normalize(); got != "lëtzebuergesch" {
		t.Fatalf("expected luxembourgish first, got %q", got)
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	t.Parallel()

	if got := PlainText("hello").Normalize(); got != "hello" {
		t.Fatalf("plain text: got %q", got)
	}

	text := LocalizedText(map[string]string{"pt": "olá"})
	if got := text.Normalize(); got != "olá" {
		t.Fatalf("expected arbitrary-language fallback, got %q", got)
	}

	if got := LocalizedText(map[string]string{}).Normalize(); got != "" {
		t.Fatalf("expected empty for empty mapping, got %q", got)
	}
}

func TestSignature(t *testing.T) {
	t.Parallel()

	text := LocalizedText(map[string]string{
		"lb": " Wat mengt Dir? ",
		"en": "What do you think?",
		"de": "",
	})
	want := "wat mengt dir?|what do you think?"
	if got := text.Signature(); got != want {
		t.Fatalf("signature: got %q want %q", got, want)
	}

	if got := PlainText("  Plain QUESTION ").Signature(); got != "plain question" {
		t.Fatalf("plain signature: got %q", got)
	}

	if got := LocalizedText(map[string]string{"lb": "  "}).Signature(); got != "" {
		t.Fatalf("blank-only mapping should yield empty signature, got %q", got)
	}
}

func TestTextJSONRoundTrip(t *testing.T) {
	t.Parallel()

	var fromString Text
	if err := json.Unmarshal([]byte(`"hello"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if fromString.Plain != "hello" || fromString.Localized != nil {
		t.Fatalf("unexpected value from string: %+v", fromString)
	}

	var fromMap Text
	if err := json.Unmarshal([]byte(`{"lb":"moien","en":"hello","n":4}`), &fromMap); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if fromMap.Localized["lb"] != "moien" {
		t.Fatalf("unexpected lb value: %+v", fromMap)
	}
	if _, ok := fromMap.Localized["n"]; ok {
		t.Fatalf("non-string entry should be dropped: %+v", fromMap)
	}

	out, err := json.Marshal(fromMap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Text
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if again.Localized["en"] != "hello" {
		t.Fatalf("round trip lost data: %+v", again)
	}
}

func TestDateKey(t *testing.T) {
	t.Parallel()

	lux, err := time.LoadLocation("Europe/Luxembourg")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 23:30 UTC on Feb 19 is already Feb 20 in Luxembourg.
	instant := time.Date(2025, 2, 19, 23, 30, 0, 0, time.UTC)
	if got := DateKey(instant, lux); got != "02-20-2025" {
		t.Fatalf("date key: got %q", got)
	}

	parsed, err := ParseDateKey("02-20-2025", lux)
	if err != nil {
		t.Fatalf("parse date key: %v", err)
	}
	if DateKey(parsed, lux) != "02-20-2025" {
		t.Fatalf("parse/format mismatch: %v", parsed)
	}
}

func TestZeroResults(t *testing.T) {
	t.Parallel()

	now := time.Now()
	options := []Option{{ID: "yes"}, {ID: "no"}, {ID: "unsure"}}

	results := ZeroResults(options, now)
	if results.TotalResponses != 0 {
		t.Fatalf("totalResponses: got %d", results.TotalResponses)
	}
	if len(results.PerOption) != 3 {
		t.Fatalf("perOption size: got %d", len(results.PerOption))
	}
	for _, opt := range options {
		if v, ok := results.PerOption[opt.ID]; !ok || v != 0 {
			t.Fatalf("option %s not zero-initialized: %v %v", opt.ID, v, ok)
		}
	}
	if results.Breakdown == nil || len(results.Breakdown) != 0 {
		t.Fatalf("breakdown should be empty non-nil: %#v", results.Breakdown)
	}
}
