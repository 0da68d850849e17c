// Package state holds the navigation model of the browser as an immutable
// snapshot. Every transition returns a new ViewState; async requests carry
// a Ticket so late completions from an earlier navigation are dropped.
package state

import (
	"strings"

	"github.com/pders01/wikinsight/internal/insight"
	"github.com/pders01/wikinsight/internal/wiki"
)

type Screen int

const (
	Home Screen = iota
	Results
	Article
)

func (s Screen) String() string {
	switch s {
	case Home:
		return "home"
	case Results:
		return "results"
	case Article:
		return "article"
	default:
		return "unknown"
	}
}

// Ticket identifies the navigation an async request was issued under.
type Ticket struct {
	Generation uint64
	Subject    string
}

type ViewState struct {
	Screen         Screen
	Query          string
	Results        []wiki.SearchResult
	Article        *wiki.Article
	Insight        *insight.Summary
	ContentLoading bool
	InsightLoading bool
	// InsightErr is the last insight failure for the displayed article.
	InsightErr error
	// Err is the last search or article failure.
	Err error

	Generation uint64
	// ArticleGen is the generation whose article is shown or pending.
	ArticleGen uint64
}

func New() ViewState {
	return ViewState{Screen: Home}
}

// IsCurrent reports whether no navigation happened since t was issued.
func (s ViewState) IsCurrent(t Ticket) bool {
	return t.Generation == s.Generation
}

func (s ViewState) next(subject string) (ViewState, Ticket) {
	s.Generation++
	return s, Ticket{Generation: s.Generation, Subject: subject}
}

// BeginSearch starts a search for the trimmed query. A blank query is a
// no-op and reports false.
func (s ViewState) BeginSearch(query string) (ViewState, Ticket, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return s, Ticket{}, false
	}
	s, t := s.next(q)
	s.Query = q
	s.ContentLoading = true
	s.Err = nil
	return s, t, true
}

func (s ViewState) CompleteSearch(t Ticket, results []wiki.SearchResult, err error) ViewState {
	if !s.IsCurrent(t) {
		return s
	}
	s.ContentLoading = false
	if err != nil {
		s.Err = err
		return s
	}
	s.Results = make([]wiki.SearchResult, len(results))
	copy(s.Results, results)
	s.Screen = Results
	return s
}

// BeginOpenArticle switches to the article screen before any content has
// arrived and forgets the insight of whatever was shown before.
func (s ViewState) BeginOpenArticle(title string) (ViewState, Ticket) {
	s, t := s.next(title)
	s.ArticleGen = s.Generation
	s.Screen = Article
	s.Insight = nil
	s.InsightErr = nil
	s.InsightLoading = false
	s.ContentLoading = true
	s.Err = nil
	return s, t
}

// CompleteArticle applies a fetched article. The bool reports whether the
// caller should now request the insight for it.
func (s ViewState) CompleteArticle(t Ticket, article *wiki.Article, err error) (ViewState, bool) {
	if !s.IsCurrent(t) {
		return s, false
	}
	s.ContentLoading = false
	if err != nil {
		s.Err = err
		return s, false
	}
	s.Article = article
	s.InsightLoading = true
	return s, true
}

// CompleteInsight lands only for the article it was requested for. A later
// search or Back does not invalidate it; opening another article or going
// home does.
func (s ViewState) CompleteInsight(t Ticket, summary *insight.Summary, err error) ViewState {
	if t.Generation != s.ArticleGen || !s.InsightLoading {
		return s
	}
	s.InsightLoading = false
	if err != nil {
		s.Insight = nil
		s.InsightErr = err
		return s
	}
	s.Insight = summary
	s.InsightErr = nil
	return s
}

// GoHome resets everything. It always starts a new generation so that a
// pending random pick issued on the home screen is dropped too; repeated
// calls differ only in the counters.
func (s ViewState) GoHome() ViewState {
	home := New()
	home.Generation = s.Generation + 1
	home.ArticleGen = home.Generation
	return home
}

// Back leaves the article screen for the result list. Pending article or
// search completions become stale.
func (s ViewState) Back() ViewState {
	s.Generation++
	s.Screen = Results
	s.ContentLoading = false
	return s
}

// BeginRandom hands out a ticket for choosing a random title. The pick
// should only be opened if IsCurrent still holds when it arrives.
func (s ViewState) BeginRandom() Ticket {
	return Ticket{Generation: s.Generation, Subject: "random"}
}

// Showing reports whether the article screen has content to display.
func (s ViewState) Showing() bool {
	return s.Screen == Article && s.Article != nil
}
