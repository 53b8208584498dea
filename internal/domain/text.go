package domain

import (
	"encoding/json"
	"strings"
)

// LanguagePriority is the display resolution order for localized text.
var LanguagePriority = []string{"lb", "fr", "de", "en"}

// SignatureSeparator joins per-language question text into a duplicate key.
const SignatureSeparator = "|"

// Text is either a plain string or a per-language mapping. Upstream payloads
// use both shapes interchangeably, so the JSON codec accepts either.
type Text struct {
	Plain     string
	Localized map[string]string
}

// PlainText wraps a bare string.
func PlainText(s string) Text {
	return Text{Plain: s}
}

// LocalizedText wraps a per-language mapping.
func LocalizedText(byLang map[string]string) Text {
	return Text{Localized: byLang}
}

// IsZero reports whether no usable text is present in any form.
func (t Text) IsZero() bool {
	return t.Normalize() == ""
}

// Normalize resolves a single display string: the plain value if present,
// otherwise the first language in priority order, otherwise the first
// string-valued entry in arbitrary order.
func (t Text) Normalize() string {
	if t.Localized == nil {
		return t.Plain
	}
	for _, lang := range LanguagePriority {
		if v, ok := t.Localized[lang]; ok && v != "" {
			return v
		}
	}
	for _, v := range t.Localized {
		if v != "" {
			return v
		}
	}
	return ""
}

// Signature returns a lowercase fingerprint used for duplicate detection:
// trimmed, lowercased language entries joined in priority order. Plain text
// yields its trimmed lowercase form. Not a hash; collisions across partially
// matching translations are accepted behavior.
func (t Text) Signature() string {
	if t.Localized == nil {
		return strings.ToLower(strings.TrimSpace(t.Plain))
	}
	parts := make([]string, 0, len(LanguagePriority))
	for _, lang := range LanguagePriority {
		v := strings.ToLower(strings.TrimSpace(t.Localized[lang]))
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, SignatureSeparator)
}

// Get returns the entry for a single language, empty when absent.
func (t Text) Get(lang string) string {
	if t.Localized == nil {
		return t.Plain
	}
	return t.Localized[lang]
}

// MarshalJSON emits the original shape: string or object.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.Localized != nil {
		return json.Marshal(t.Localized)
	}
	return json.Marshal(t.Plain)
}

// UnmarshalJSON accepts a bare string or an object; non-string object values
// are dropped rather than failing the whole document.
func (t *Text) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = Text{Plain: plain}
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = Text{}
		return err
	}

	byLang := make(map[string]string, len(raw))
	for lang, v := range raw {
		if s, ok := v.(string); ok {
			byLang[lang] = s
		}
	}
	*t = Text{Localized: byLang}
	return nil
}
