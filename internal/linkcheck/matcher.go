package linkcheck

import (
	"bytes"
	"strings"
)

// DefaultNoResultPhrases are markers retailer search pages show when a query
// matched nothing.
var DefaultNoResultPhrases = []string{
	"no results for",
	"no results found",
	"0 results found",
	"0 results for",
	"did not match any products",
	"we couldn't find",
	"we could not find",
	"sorry, no results",
	"no matching products",
	"no products found",
	"search-no-results",
	"no-results",
	"noresults",
	"zero-results",
}

// Matcher detects "no results" signatures in a lowercased page prefix.
type Matcher struct {
	phrases [][]byte
}

// NewMatcher lowercases phrases once. Empty phrases are ignored.
func NewMatcher(phrases []string) *Matcher {
	m := &Matcher{phrases: make([][]byte, 0, len(phrases))}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		m.phrases = append(m.phrases, []byte(p))
	}
	return m
}

// NoResults reports whether body contains any phrase. body must already be
// lowercased.
func (m *Matcher) NoResults(body []byte) bool {
	for _, p := range m.phrases {
		if bytes.Contains(body, p) {
			return true
		}
	}
	return false
}

// Phrases returns a copy of the configured phrases.
func (m *Matcher) Phrases() []string {
	out := make([]string, len(m.phrases))
	for i, p := range m.phrases {
		out[i] = string(p)
	}
	return out
}
