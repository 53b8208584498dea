package usecase

import (
	"strings"

	"github.com/polysign/mirsinn/internal/domain"
)

// ExclusionSet accumulates article identifiers and question signatures seen
// during one run. It is seeded from recent days and only ever grows; entries
// are never removed mid-run.
type ExclusionSet struct {
	urls       map[string]struct{}
	titles     map[string]struct{}
	signatures map[string]struct{}
}

// NewExclusionSet seeds the set from the recent-article history.
func NewExclusionSet(recent []domain.RecentArticle) *ExclusionSet {
	s := &ExclusionSet{
		urls:       map[string]struct{}{},
		titles:     map[string]struct{}{},
		signatures: map[string]struct{}{},
	}
	for _, art := range recent {
		s.AddArticle(art.URL, art.Title)
	}
	return s
}

// AddArticle records an article's lowercase URL and title.
func (s *ExclusionSet) AddArticle(url, title string) {
	if u := normalizeKey(url); u != "" {
		s.urls[u] = struct{}{}
	}
	if t := normalizeKey(title); t != "" {
		s.titles[t] = struct{}{}
	}
}

// AddSignature records an accepted question's signature.
func (s *ExclusionSet) AddSignature(sig string) {
	if sig != "" {
		s.signatures[sig] = struct{}{}
	}
}

// IsDuplicate reports whether a candidate collides with anything seen so
// far: its URL, its title, or its question signature.
func (s *ExclusionSet) IsDuplicate(url, title, sig string) bool {
	if u := normalizeKey(url); u != "" {
		if _, ok := s.urls[u]; ok {
			return true
		}
	}
	if t := normalizeKey(title); t != "" {
		if _, ok := s.titles[t]; ok {
			return true
		}
	}
	if sig != "" {
		if _, ok := s.signatures[sig]; ok {
			return true
		}
	}
	return false
}

// Len returns the total number of recorded entries.
func (s *ExclusionSet) Len() int {
	return len(s.urls) + len(s.titles) + len(s.signatures)
}

func normalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
