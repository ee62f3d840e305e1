package linkcheck

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_NoResults(t *testing.T) {
	m := NewMatcher(DefaultNoResultPhrases)

	tests := []struct {
		name string
		body string
		want bool
	}{
		{"plain results page", "<html><body>42 items found</body></html>", false},
		{"no results found", "<h1>no results found for your search</h1>", true},
		{"amazon style", `no results for "purple linen blazer"`, true},
		{"css hook", `<div class="search-no-results">`, true},
		{"zero count", "0 results found", true},
		{"empty body", "", false},
		{"near miss", "results found: 12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.NoResults([]byte(tt.body)))
		})
	}
}

func TestMatcher_PhrasesAreLowercased(t *testing.T) {
	m := NewMatcher([]string{"Sorry, NOTHING Here", "  ", ""})

	assert.Equal(t, []string{"sorry, nothing here"}, m.Phrases())
	assert.True(t, m.NoResults(bytes.ToLower([]byte("<p>Sorry, nothing here</p>"))))
}

func TestMatcher_OrderDoesNotMatter(t *testing.T) {
	body := []byte("we couldn't find anything. no-results")
	forward := NewMatcher([]string{"we couldn't find", "no-results"})
	reverse := NewMatcher([]string{"no-results", "we couldn't find"})

	assert.Equal(t, forward.NoResults(body), reverse.NoResults(body))
}

func TestMatcher_Empty(t *testing.T) {
	m := NewMatcher(nil)
	assert.False(t, m.NoResults([]byte("no results found")))
}
