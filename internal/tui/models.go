package tui

import (
	"context"

	"github.com/pders01/wikinsight/internal/insight"
	"github.com/pders01/wikinsight/internal/search"
	"github.com/pders01/wikinsight/internal/storage"
	"github.com/pders01/wikinsight/internal/wiki"
)

// Encyclopedia is what the TUI needs from *wiki.Client.
type Encyclopedia interface {
	Search(ctx context.Context, query string) ([]wiki.SearchResult, error)
	FetchArticle(ctx context.Context, title string) (*wiki.Article, error)
	Random(ctx context.Context) (string, error)
	Featured(ctx context.Context) ([]wiki.FeaturedItem, error)
	ArticleURL(title string) string
}

// Summarizer is what the TUI needs from *insight.Client.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) (*insight.Summary, error)
}

type URLOpener interface {
	Open(url string) error
}

// Services are the collaborators of App. Wiki is required; a nil
// Insights disables the sidebar with InsightsErr as the reason, a nil
// Store disables history.
type Services struct {
	Wiki        Encyclopedia
	Insights    Summarizer
	InsightsErr error
	Store       *storage.Store
	Searcher    search.Searcher
	Opener      URLOpener
}
