package storage

import (
	"time"
)

// Visit is one article in the reading history.
type Visit struct {
	Title        string    `json:"title"`
	PageID       int       `json:"page_id"`
	URL          string    `json:"url"`
	Excerpt      string    `json:"excerpt"`
	TLDR         string    `json:"tldr"`
	FirstVisited time.Time `json:"first_visited"`
	LastVisited  time.Time `json:"last_visited"`
	Count        int       `json:"count"`
}

// Query is a search the user ran.
type Query struct {
	Text    string    `json:"text"`
	LastRun time.Time `json:"last_run"`
	Count   int       `json:"count"`
}
