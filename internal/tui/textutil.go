package tui

import "github.com/charmbracelet/x/ansi"

// Titles and URLs can hold wide runes (CJK, emoji), so limits are in
// terminal cells, not runes.

// truncateEnd fits s into limit cells, ending in an ellipsis when cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	return ansi.Truncate(s, limit, "…")
}

// truncateMiddle fits s into limit cells keeping both ends, which is where
// an article URL carries its host and title.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	width := ansi.StringWidth(s)
	if width <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	// TruncateLeft keeps a wide rune that straddles the cut, so cut further
	// until the tail fits.
	cut := width - right
	tail := ansi.TruncateLeft(s, cut, "")
	for ansi.StringWidth(tail) > right {
		cut++
		tail = ansi.TruncateLeft(s, cut, "")
	}
	return ansi.Truncate(s, left, "") + "…" + tail
}
