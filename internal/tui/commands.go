package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/wikinsight/internal/debuglog"
	"github.com/pders01/wikinsight/internal/insight"
	"github.com/pders01/wikinsight/internal/markup"
	"github.com/pders01/wikinsight/internal/search"
	"github.com/pders01/wikinsight/internal/state"
	"github.com/pders01/wikinsight/internal/storage"
	"github.com/pders01/wikinsight/internal/wiki"
)

const excerptChars = 1000

// startSearch runs query unless it is blank.
func (a *App) startSearch(query string) tea.Cmd {
	next, ticket, ok := a.state.BeginSearch(query)
	if !ok {
		return nil
	}
	a.state = next
	a.randomPending = false
	a.clearStatus()
	debuglog.Infof("searching %q", ticket.Subject)
	return tea.Batch(a.spinner.Tick, a.searchCmd(ticket), a.recordQuery(ticket.Subject))
}

func (a *App) searchCmd(ticket state.Ticket) tea.Cmd {
	ctx, client := a.ctx, a.svc.Wiki
	return func() tea.Msg {
		results, err := client.Search(ctx, ticket.Subject)
		return searchDoneMsg{ticket: ticket, results: results, err: err}
	}
}

// openArticle switches to the article screen and fetches title.
func (a *App) openArticle(title string) tea.Cmd {
	next, ticket := a.state.BeginOpenArticle(title)
	a.state = next
	a.randomPending = false
	a.clearStatus()
	a.searchInput.Blur()
	debuglog.Infof("opening article %q", title)

	ctx, client := a.ctx, a.svc.Wiki
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		article, err := client.FetchArticle(ctx, title)
		return articleLoadedMsg{ticket: ticket, article: article, err: err}
	})
}

// requestInsight asks for the summary of article. Without a summarizer the
// failure is delivered the same way a remote one would be.
func (a *App) requestInsight(ticket state.Ticket, article *wiki.Article) tea.Cmd {
	summarizer := a.svc.Insights
	if summarizer == nil {
		reason := a.svc.InsightsErr
		if reason == nil {
			reason = insight.ErrDisabled
		}
		return func() tea.Msg {
			return insightDoneMsg{ticket: ticket, err: reason}
		}
	}
	ctx := a.ctx
	return func() tea.Msg {
		summary, err := summarizer.Summarize(ctx, article.Title, article.Content)
		return insightDoneMsg{ticket: ticket, summary: summary, err: err}
	}
}

// renderArticle converts the article to Markdown and renders it at the
// current wrap width. The renderer is built per call since renders of
// different articles may overlap.
func (a *App) renderArticle(article *wiki.Article) tea.Cmd {
	width := a.wordWrapWidth()
	a.rendererWidth = width
	url := a.svc.Wiki.ArticleURL(article.Title)

	return func() tea.Msg {
		content, err := renderMarkdown(article, url, width)
		if err != nil {
			debuglog.Warnf("rendering %q: %v", article.Title, err)
			content = lipgloss.NewStyle().Width(width).Render(markup.PlainText(article.Content))
		}
		return articleRenderedMsg{article: article, content: content}
	}
}

func renderMarkdown(article *wiki.Article, url string, width int) (string, error) {
	body, err := markup.ToMarkdown(article.Content)
	if err != nil {
		return "", wrapErr("converting article", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", article.Title)
	fmt.Fprintf(&b, "[Read online](%s)\n\n---\n\n", url)
	b.WriteString(body)

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", wrapErr("creating renderer", err)
	}
	return r.Render(b.String())
}

func (a *App) startRandom() tea.Cmd {
	ticket := a.state.BeginRandom()
	a.randomPending = true
	a.clearStatus()

	ctx, client := a.ctx, a.svc.Wiki
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		title, err := client.Random(ctx)
		return randomPickedMsg{ticket: ticket, title: title, err: err}
	})
}

func (a *App) loadFeatured() tea.Cmd {
	if !a.config.UI.ShowFeatured {
		return nil
	}
	ctx, client := a.ctx, a.svc.Wiki
	return func() tea.Msg {
		items, err := client.Featured(ctx)
		return featuredLoadedMsg{items: items, err: err}
	}
}

func (a *App) goHome() tea.Cmd {
	a.state = a.state.GoHome()
	a.randomPending = false
	a.renderedArticle = nil
	a.viewport.SetContent("")
	a.clearStatus()
	a.searchInput.SetValue("")
	a.resultList.ResetSelected()
	return tea.Batch(a.resultList.SetItems(nil), a.searchInput.Focus())
}

// back steps Article→Results and Results→Home. An article reached
// without a search has no result list to return to.
func (a *App) back() tea.Cmd {
	switch a.state.Screen {
	case state.Article:
		if a.state.Query == "" && len(a.state.Results) == 0 {
			return a.goHome()
		}
		a.state = a.state.Back()
		a.randomPending = false
		a.clearStatus()
		a.searchInput.Blur()
		return nil
	case state.Results:
		return a.goHome()
	default:
		return nil
	}
}

func (a *App) openInBrowser() tea.Cmd {
	if a.state.Article == nil {
		a.setStatus("No article to open", StatusWarn)
		return nil
	}
	if a.svc.Opener == nil {
		a.setStatus("No browser configured", StatusWarn)
		return nil
	}
	url := a.svc.Wiki.ArticleURL(a.state.Article.Title)
	opener := a.svc.Opener
	return func() tea.Msg {
		if err := opener.Open(url); err != nil {
			return errorMsg{err: wrapErr("opening in browser", err)}
		}
		return statusMsg{text: MsgOpened(url), kind: StatusSuccess}
	}
}

func (a *App) recordQuery(query string) tea.Cmd {
	store := a.svc.Store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.RecordQuery(query); err != nil {
			debuglog.Warnf("recording query %q: %v", query, err)
		}
		return nil
	}
}

func (a *App) recordVisit(article *wiki.Article) tea.Cmd {
	store := a.svc.Store
	if store == nil {
		return nil
	}
	listener, _ := a.svc.Searcher.(search.UpdateListener)
	url := a.svc.Wiki.ArticleURL(article.Title)

	return func() tea.Msg {
		saved, err := store.RecordVisit(&storage.Visit{
			Title:   article.Title,
			PageID:  article.PageID,
			URL:     url,
			Excerpt: markup.Truncate(markup.PlainText(article.Content), excerptChars),
		})
		if err != nil {
			debuglog.Warnf("recording visit %q: %v", article.Title, err)
			return nil
		}
		if listener != nil {
			listener.OnVisitRecorded(saved)
		}
		return nil
	}
}

func (a *App) setTLDR(title, tldr string) tea.Cmd {
	store := a.svc.Store
	if store == nil || tldr == "" {
		return nil
	}
	listener, _ := a.svc.Searcher.(search.UpdateListener)

	return func() tea.Msg {
		saved, err := store.SetTLDR(title, tldr)
		if err != nil {
			debuglog.Warnf("saving tl;dr for %q: %v", title, err)
			return nil
		}
		if listener != nil {
			listener.OnVisitRecorded(saved)
		}
		return nil
	}
}
