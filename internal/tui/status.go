package tui

import (
	"fmt"
)

// Canonical short status messages used across the app.
const (
	MsgSearching      = "Searching…"
	MsgLoadingArticle = "Loading article…"
	MsgAnalyzing      = "Analyzing article…"
	MsgPickingRandom  = "Finding something curious…"
	MsgInsightsOff    = "Insights unavailable"
	MsgCouldNotLoad   = "Could not load this article."
	MsgNoSuchArticle  = "No such article on Wikipedia"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "About 1 result"
	}
	return fmt.Sprintf("About %d results", n)
}

func MsgNoResults(query string) string {
	return fmt.Sprintf("No results found for %q.", query)
}

func MsgOpened(url string) string {
	return "Opened " + truncateMiddle(url, 60)
}
