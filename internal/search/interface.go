// Package search finds articles in the reading history.
package search

import (
	"github.com/pders01/wikinsight/internal/debuglog"
	"github.com/pders01/wikinsight/internal/storage"
)

type Result struct {
	Visit   *storage.Visit
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "tldr", "excerpt"
	Text   string
	Weight float64
}

// Searcher is the minimal search API used by the TUI and CLI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// UpdateListener is implemented by engines that keep an external index
// and need to hear about history writes.
type UpdateListener interface {
	OnVisitRecorded(visit *storage.Visit)
	OnVisitDeleted(title string)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Open returns a bleve-backed searcher when indexPath is set, falling back
// to scanning the store if the index cannot be opened.
func Open(store *storage.Store, indexPath string) Searcher {
	if indexPath == "" {
		return NewEngine(store)
	}
	be, err := NewBleveEngine(store, indexPath)
	if err != nil {
		debuglog.Warnf("history index unavailable, using scan search: %v", err)
		return NewEngine(store)
	}
	return be
}
