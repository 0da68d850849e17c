// Package markup converts MediaWiki HTML into the two shapes the client
// needs: plain text for the insight prompt and search snippets, and
// Markdown for the terminal reader.
package markup

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// blockStrict separates stripped elements so paragraphs do not run together.
	blockStrict = func() *bluemonday.Policy {
		p := bluemonday.StrictPolicy()
		p.AddSpaceWhenStrippingTag(true)
		return p
	}()
	inlineStrict = bluemonday.StrictPolicy()
)

// PlainText removes every tag and decodes entities. Script and style
// bodies are dropped, runs of whitespace collapse to a single space.
func PlainText(raw string) string {
	if raw == "" {
		return ""
	}
	return collapseSpace(html.UnescapeString(blockStrict.Sanitize(raw)))
}

// Snippet strips the inline highlighting the search API puts around matches.
func Snippet(raw string) string {
	if raw == "" {
		return ""
	}
	return collapseSpace(html.UnescapeString(inlineStrict.Sanitize(raw)))
}

// Truncate returns at most limit runes of s. It never splits a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// PromptText is the markup-free, bounded rendering sent to the insight model.
func PromptText(raw string, limit int) string {
	return Truncate(PlainText(raw), limit)
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
