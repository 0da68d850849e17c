package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/wikinsight/internal/config"
	"github.com/pders01/wikinsight/internal/debuglog"
	"github.com/pders01/wikinsight/internal/insight"
	"github.com/pders01/wikinsight/internal/markup"
	"github.com/pders01/wikinsight/internal/state"
	"github.com/pders01/wikinsight/internal/wiki"
)

const (
	footerHeight   = 2 // separator + status bar
	searchBarLines = 3
	minArticleCols = 40
)

type App struct {
	ctx          context.Context
	config       *config.Config
	svc          Services
	keyHandler   *KeyHandler
	state        state.ViewState
	searchInput  textinput.Model
	resultList   list.Model
	featuredList list.Model
	viewport     viewport.Model
	spinner      spinner.Model
	featured     []wiki.FeaturedItem
	width        int
	height       int

	// renderedArticle is the article whose markdown is in the viewport.
	renderedArticle *wiki.Article
	rendererWidth   int
	randomPending   bool
	status          string
	statusKind      StatusKind
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowTitle(title != "")
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	// q and esc belong to the key handler.
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

func NewApp(cfg *config.Config, svc Services) *App {
	si := textinput.New()
	si.Placeholder = "Search Wikipedia…"
	si.Prompt = "› "
	si.CharLimit = 256
	si.Width = 50
	si.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(SecondaryColor)),
	)

	app := &App{
		ctx:          context.Background(),
		config:       cfg,
		svc:          svc,
		state:        state.New(),
		searchInput:  si,
		resultList:   newList(""),
		featuredList: newList("› featured"),
		viewport:     viewport.New(0, 0),
		spinner:      sp,
	}
	app.keyHandler = NewKeyHandler(app, cfg)
	return app
}

// State returns the current navigation snapshot.
func (a *App) State() state.ViewState {
	return a.state
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.loadFeatured())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, a.resize()

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case searchDoneMsg:
		return a, a.handleSearchDone(msg)

	case articleLoadedMsg:
		return a, a.handleArticleLoaded(msg)

	case articleRenderedMsg:
		a.handleArticleRendered(msg)
		return a, nil

	case insightDoneMsg:
		return a, a.handleInsightDone(msg)

	case randomPickedMsg:
		return a, a.handleRandomPicked(msg)

	case featuredLoadedMsg:
		return a, a.handleFeaturedLoaded(msg)

	case statusMsg:
		a.setStatus(msg.text, msg.kind)
		return a, nil

	case errorMsg:
		debuglog.Warnf("%v", msg.err)
		a.setStatus(describeErr(msg.err), StatusError)
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Cursor blinks and other component messages.
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) busy() bool {
	return a.state.ContentLoading || a.state.InsightLoading || a.randomPending
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

func (a *App) handleSearchDone(msg searchDoneMsg) tea.Cmd {
	if !a.state.IsCurrent(msg.ticket) {
		debuglog.Debugf("dropping stale results for %q", msg.ticket.Subject)
		return nil
	}
	a.state = a.state.CompleteSearch(msg.ticket, msg.results, msg.err)
	if msg.err != nil {
		debuglog.Errorf("search %q failed: %v", msg.ticket.Subject, msg.err)
		return nil
	}
	a.searchInput.Blur()
	a.resultList.ResetSelected()
	return a.resultList.SetItems(resultItems(a.state.Results))
}

func (a *App) handleArticleLoaded(msg articleLoadedMsg) tea.Cmd {
	if !a.state.IsCurrent(msg.ticket) {
		debuglog.Debugf("dropping stale article %q", msg.ticket.Subject)
		return nil
	}
	var startInsight bool
	a.state, startInsight = a.state.CompleteArticle(msg.ticket, msg.article, msg.err)
	if msg.err != nil {
		debuglog.Errorf("fetching article %q failed: %v", msg.ticket.Subject, msg.err)
		return nil
	}
	if !startInsight {
		return nil
	}
	insightTicket := state.Ticket{Generation: msg.ticket.Generation, Subject: msg.article.Title}
	return tea.Batch(
		a.renderArticle(msg.article),
		a.requestInsight(insightTicket, msg.article),
		a.recordVisit(msg.article),
	)
}

func (a *App) handleArticleRendered(msg articleRenderedMsg) {
	if msg.article != a.state.Article {
		return
	}
	fresh := a.renderedArticle != msg.article
	a.viewport.SetContent(msg.content)
	if fresh {
		a.viewport.GotoTop()
	}
	a.renderedArticle = msg.article
}

func (a *App) handleInsightDone(msg insightDoneMsg) tea.Cmd {
	applies := a.state.InsightLoading && msg.ticket.Generation == a.state.ArticleGen
	a.state = a.state.CompleteInsight(msg.ticket, msg.summary, msg.err)
	if !applies {
		debuglog.Debugf("dropping stale insight for %q", msg.ticket.Subject)
		return nil
	}
	if msg.err != nil {
		debuglog.Warnf("insight for %q unavailable: %v", msg.ticket.Subject, msg.err)
		return nil
	}
	return a.setTLDR(msg.ticket.Subject, msg.summary.TLDR)
}

func (a *App) handleRandomPicked(msg randomPickedMsg) tea.Cmd {
	if !a.state.IsCurrent(msg.ticket) {
		debuglog.Debugf("dropping stale random pick %q", msg.title)
		return nil
	}
	a.randomPending = false
	if msg.err != nil {
		debuglog.Errorf("random article failed: %v", msg.err)
		a.setStatus(describeErr(msg.err), StatusError)
		return nil
	}
	a.clearStatus()
	return a.openArticle(msg.title)
}

func (a *App) handleFeaturedLoaded(msg featuredLoadedMsg) tea.Cmd {
	if msg.err != nil {
		debuglog.Warnf("featured feed unavailable: %v", msg.err)
		return nil
	}
	a.featured = msg.items
	return a.featuredList.SetItems(featuredItems(msg.items))
}

// sidebarWidth is zero when the terminal is too narrow for the sidebar.
func (a *App) sidebarWidth() int {
	w := a.config.UI.SidebarWidth
	if w <= 0 || a.width-w < minArticleCols {
		return 0
	}
	return w
}

func (a *App) articleWidth() int {
	return a.width - a.sidebarWidth()
}

func (a *App) contentHeight() int {
	h := a.height - footerHeight - searchBarLines
	if h < 1 {
		return 1
	}
	return h
}

func (a *App) wordWrapWidth() int {
	cols := a.articleWidth()
	wrap := (cols * 9) / 10
	if wrap > a.config.UI.WordWrapMaxWidth {
		wrap = a.config.UI.WordWrapMaxWidth
	}
	if wrap < a.config.UI.WordWrapMinWidth {
		wrap = a.config.UI.WordWrapMinWidth
	}
	if cols < 50 {
		wrap = cols - 4
		if wrap < 20 {
			wrap = 20
		}
	}
	return wrap
}

func (a *App) resize() tea.Cmd {
	inputWidth := a.width - 10
	if inputWidth > 60 {
		inputWidth = 60
	}
	if inputWidth < 10 {
		inputWidth = 10
	}
	a.searchInput.Width = inputWidth

	a.resultList.SetSize(a.width, a.contentHeight()-resultsHeadingLines)
	a.featuredList.SetSize(a.width, a.height-footerHeight-a.homeTopHeight())
	a.viewport.Width = a.articleWidth()
	a.viewport.Height = a.contentHeight()

	if a.renderedArticle != nil && a.renderedArticle == a.state.Article &&
		abs(a.wordWrapWidth()-a.rendererWidth) > 10 {
		return a.renderArticle(a.renderedArticle)
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	var body string
	switch a.state.Screen {
	case state.Home:
		body = a.homeView()
	case state.Results:
		body = a.resultsView()
	case state.Article:
		body = a.articleView()
	}

	bodyHeight := a.height - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	separator := SeparatorStyle.Render(strings.Repeat("─", a.width))
	return lipgloss.JoinVertical(lipgloss.Left,
		ContentWrapper(a.width, bodyHeight).Render(body),
		separator,
		a.statusBar(),
	)
}

func (a *App) searchBar() string {
	return searchFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)
}

func (a *App) homeTop() string {
	return lipgloss.JoinVertical(lipgloss.Center, GetWelcomeMessage(), "", a.searchBar())
}

func (a *App) homeTopHeight() int {
	return lipgloss.Height(a.homeTop()) + 1
}

func (a *App) homeView() string {
	top := lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.homeTop())
	rows := []string{top, ""}
	switch {
	case a.state.ContentLoading:
		rows = append(rows, lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.spinner.View()+" "+MsgSearching))
	case a.randomPending:
		rows = append(rows, lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.spinner.View()+" "+MsgPickingRandom))
	case len(a.featured) > 0:
		rows = append(rows, a.featuredList.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) resultsView() string {
	var content string
	switch {
	case a.state.ContentLoading:
		content = a.spinner.View() + " " + MsgSearching
	case len(a.state.Results) == 0:
		content = renderMuted(MsgNoResults(a.state.Query))
	default:
		content = lipgloss.JoinVertical(lipgloss.Left,
			resultsHeading(len(a.state.Results), a.state.Query, a.width),
			"",
			a.resultList.View(),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.searchBar(), content)
}

func (a *App) articleView() string {
	main := a.articleBody()
	if a.sidebarWidth() > 0 {
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, a.sidebarView())
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.searchBar(), main)
}

func (a *App) articleBody() string {
	width, height := a.articleWidth(), a.contentHeight()
	switch {
	case a.state.ContentLoading:
		text := MsgLoadingArticle
		if a.state.Generation != a.state.ArticleGen {
			text = MsgSearching
		}
		return centeredNotice(width, height, a.spinner.View()+" "+text)
	case a.state.Article == nil:
		return centeredNotice(width, height, renderMuted(MsgCouldNotLoad))
	case a.renderedArticle != a.state.Article:
		return centeredNotice(width, height, a.spinner.View()+" "+MsgLoadingArticle)
	default:
		return a.viewport.View()
	}
}

func (a *App) sidebarView() string {
	width := a.sidebarWidth() - 1
	height := a.contentHeight()
	rows := []string{SidebarHeadingStyle.Render("✦ AI research insights"), ""}

	s := a.state
	switch {
	case s.InsightLoading:
		rows = append(rows, a.spinner.View()+" "+MsgAnalyzing)
	case s.Insight != nil:
		rows = append(rows, insightSections(s.Insight, width-1)...)
	case s.InsightErr != nil:
		rows = append(rows,
			ErrorMessageStyle.Render(MsgInsightsOff),
			renderMuted(describeErr(s.InsightErr)),
		)
	case s.ContentLoading:
		rows = append(rows, renderMuted("Waiting for the article…"))
	default:
		rows = append(rows, renderMuted("Nothing to analyze yet."))
	}

	return SidebarStyle.
		Width(width).
		Height(height).
		MaxHeight(height).
		Render(strings.Join(rows, "\n"))
}

func (a *App) statusBar() string {
	var line string
	switch {
	case a.state.Err != nil:
		line = ErrorMessageStyle.Render("✗ " + truncateEnd(describeErr(a.state.Err), a.width-4))
	case a.status != "":
		line = a.statusKind.style().Render(truncateEnd(a.status, a.width-2))
	default:
		line = helpLine(a.keyHandler.GetHelpForCurrentView(), a.width-2)
	}
	return StatusBarStyle.Render(line)
}

type resultItem struct {
	result wiki.SearchResult
}

func (i resultItem) Title() string { return i.result.Title }

func (i resultItem) Description() string { return markup.Snippet(i.result.Snippet) }

func (i resultItem) FilterValue() string { return i.result.Title }

func resultItems(results []wiki.SearchResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}

type featuredItem struct {
	item wiki.FeaturedItem
}

func (i featuredItem) Title() string { return i.item.Title }

func (i featuredItem) Description() string {
	if i.item.Published.IsZero() {
		return i.item.Blurb
	}
	return i.item.Published.Format("Jan 2") + " · " + i.item.Blurb
}

func (i featuredItem) FilterValue() string { return i.item.Title }

func featuredItems(featured []wiki.FeaturedItem) []list.Item {
	items := make([]list.Item, len(featured))
	for i, f := range featured {
		items[i] = featuredItem{item: f}
	}
	return items
}

type searchDoneMsg struct {
	ticket  state.Ticket
	results []wiki.SearchResult
	err     error
}

type articleLoadedMsg struct {
	ticket  state.Ticket
	article *wiki.Article
	err     error
}

type articleRenderedMsg struct {
	article *wiki.Article
	content string
}

type insightDoneMsg struct {
	ticket  state.Ticket
	summary *insight.Summary
	err     error
}

type randomPickedMsg struct {
	ticket state.Ticket
	title  string
	err    error
}

type featuredLoadedMsg struct {
	items []wiki.FeaturedItem
	err   error
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
