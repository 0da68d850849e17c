package search

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/wikinsight/internal/storage"
)

func seededStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	visits := []*storage.Visit{
		{Title: "Alan Turing", TLDR: "English mathematician and founder of computer science.", Excerpt: "Alan Mathison Turing was an English mathematician, computer scientist and cryptanalyst."},
		{Title: "Enigma machine", TLDR: "A cipher device used in the twentieth century.", Excerpt: "The Enigma machine was broken by Polish and British cryptanalysts including Turing."},
		{Title: "Ada Lovelace", TLDR: "Wrote the first published algorithm.", Excerpt: "Augusta Ada King was an English mathematician."},
	}
	for _, v := range visits {
		_, err := store.RecordVisit(v)
		require.NoError(t, err)
	}
	return store
}

func TestNewEngine(t *testing.T) {
	store := &storage.Store{}
	engine := NewEngine(store)
	assert.NotNil(t, engine)
	assert.Equal(t, store, engine.store)
}

func TestSearchMinLength(t *testing.T) {
	engine := NewEngine(&storage.Store{})

	tests := []struct {
		name  string
		query string
	}{
		{name: "Empty query", query: ""},
		{name: "Single character query", query: "a"},
		{name: "Whitespace only", query: "   "},
		{name: "Punctuation only", query: "!?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := engine.Search(tt.query, 10)
			assert.NoError(t, err)
			assert.NotNil(t, results)
			assert.Equal(t, 0, len(results), "short queries should return empty results")
		})
	}
}

func TestEngineSearch(t *testing.T) {
	engine := NewEngine(seededStore(t))

	results, err := engine.Search("turing", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Title matches outrank excerpt matches.
	assert.Equal(t, "Alan Turing", results[0].Visit.Title)
	assert.Equal(t, "Enigma machine", results[1].Visit.Title)
	assert.Greater(t, results[0].Score, results[1].Score)

	fields := map[string]bool{}
	for _, m := range results[1].Matches {
		fields[m.Field] = true
	}
	assert.True(t, fields["excerpt"])
	assert.False(t, fields["title"])
}

func TestEngineSearch_TLDRAndLimit(t *testing.T) {
	engine := NewEngine(seededStore(t))

	results, err := engine.Search("mathematician", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	limited, err := engine.Search("mathematician", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := engine.Search("photosynthesis", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple words",
			input:    "hello world",
			expected: []string{"hello", "world"},
		},
		{
			name:     "with punctuation",
			input:    "hello, world! test.",
			expected: []string{"hello", "world", "test"},
		},
		{
			name:     "with numbers",
			input:    "test123 456hello",
			expected: []string{"test123", "456hello"},
		},
		{
			name:     "mixed case",
			input:    "Hello WORLD Test",
			expected: []string{"hello", "world", "test"},
		},
		{
			name:     "single characters filtered",
			input:    "a b test c d word",
			expected: []string{"test", "word"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "non-ascii letters",
			input:    "Gödel's theorem",
			expected: []string{"gödel", "theorem"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenize(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxLen   int
		expected string
	}{
		{"text shorter than limit", "short", 10, "short"},
		{"text exactly at limit", "exactlyten", 10, "exactlyten"},
		{"text longer than limit", "this is a very long text", 10, "this is a…"},
		{"empty text", "", 10, ""},
		{"multi-byte", "Gödel Escher Bach", 6, "Gödel…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.text, tt.maxLen))
		})
	}
}

func TestRecencyBoost(t *testing.T) {
	now := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, recencyBoost(time.Time{}, now))
	assert.InDelta(t, 0.1, recencyBoost(now, now), 1e-9)
	assert.InDelta(t, 0.05, recencyBoost(now.Add(-84*time.Hour), now), 1e-9)
	assert.Equal(t, 0.0, recencyBoost(now.Add(-8*24*time.Hour), now))
}

func TestScoreField(t *testing.T) {
	terms := []string{"turing"}

	exact := scoreField("Turing", terms, 1.0)
	prefix := scoreField("Turingery", terms, 1.0)
	none := scoreField("Lovelace", terms, 1.0)

	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, 0.0)
	assert.Equal(t, 0.0, none)
	assert.Equal(t, 0.0, scoreField("", terms, 1.0))
	assert.Equal(t, 0.0, scoreField("!!", terms, 1.0))

	assert.InDelta(t, exact*4, scoreField("Turing", terms, 4.0), 1e-9)
}

func TestFindBestSnippet(t *testing.T) {
	text := "one two three four five six seven eight nine ten turing eleven twelve thirteen fourteen fifteen sixteen"
	snippet := findBestSnippet(text, []string{"turing"}, 40)
	assert.Contains(t, snippet, "turing")
	assert.LessOrEqual(t, len([]rune(snippet)), 40)

	assert.Equal(t, "", findBestSnippet("", []string{"x"}, 40))
	assert.Equal(t, "short text", findBestSnippet("short text", []string{"x"}, 200))
}

func TestOpen_WithoutIndexUsesScan(t *testing.T) {
	s := Open(seededStore(t), "")
	_, ok := s.(*Engine)
	assert.True(t, ok)
}
