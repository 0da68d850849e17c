package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/wikinsight/internal/config"
	"github.com/pders01/wikinsight/internal/state"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

func (kh *KeyHandler) bound(name string) string {
	return kh.modifierKey + name
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Modifier combos never produce text, so they work while typing too.
	if model, cmd, handled := kh.handleGlobalKeys(key); handled {
		return model, cmd
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.searchInput.Focused()
}

func (kh *KeyHandler) handleGlobalKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings
	switch key {
	case "ctrl+c":
		return kh.app, tea.Quit, true
	case kh.bound(b.Search):
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case kh.bound(b.Home):
		return kh.app, kh.app.goHome(), true
	case kh.bound(b.Random):
		return kh.app, kh.app.startRandom(), true
	case kh.bound(b.Open):
		return kh.app, kh.app.openInBrowser(), true
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case kh.config.Keys.Bindings.Back:
		kh.app.searchInput.Blur()
		return kh.app, nil
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		if kh.hasList() {
			kh.app.searchInput.Blur()
			return kh.app, nil
		}
		return kh.delegateToTextInput(msg)
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	query := kh.sanitizeSearchInput(kh.app.searchInput.Value())
	if query == "" {
		return kh.app, nil
	}
	kh.app.searchInput.SetValue(query)
	return kh.app, kh.app.startSearch(query)
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput
	return kh.app, cmd
}

// hasList reports whether the current screen has a list to move focus to.
func (kh *KeyHandler) hasList() bool {
	switch kh.app.state.Screen {
	case state.Home:
		return len(kh.app.featured) > 0
	case state.Results:
		return len(kh.app.state.Results) > 0
	default:
		return kh.app.state.Showing()
	}
}

func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.config.Keys.Bindings.Quit:
		return kh.app, tea.Quit, true
	case kh.config.Keys.Bindings.Back:
		return kh.app, kh.app.back(), true
	case "/":
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case "enter":
		return kh.handleEnter()
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleEnter() (tea.Model, tea.Cmd, bool) {
	switch kh.app.state.Screen {
	case state.Home:
		if i, ok := kh.app.featuredList.SelectedItem().(featuredItem); ok {
			return kh.app, kh.app.openArticle(i.item.Title), true
		}
	case state.Results:
		if i, ok := kh.app.resultList.SelectedItem().(resultItem); ok {
			return kh.app, kh.app.openArticle(i.result.Title), true
		}
	}
	return kh.app, nil, false
}

// delegateToCharm hands navigation keys to the component on screen.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch kh.app.state.Screen {
	case state.Home:
		kh.app.featuredList, cmd = kh.app.featuredList.Update(msg)
	case state.Results:
		kh.app.resultList, cmd = kh.app.resultList.Update(msg)
	case state.Article:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
	}
	return kh.app, cmd
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	kh.app.searchInput.CursorEnd()
	return kh.app, kh.app.searchInput.Focus()
}

// sanitizeSearchInput sanitizes and limits search input length
func (kh *KeyHandler) sanitizeSearchInput(input string) string {
	input = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(input)
	input = strings.Join(strings.Fields(input), " ")

	if r := []rune(input); len(r) > 256 {
		input = string(r[:256])
	}
	return strings.TrimSpace(input)
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	b := kh.config.Keys.Bindings
	search := kh.bound(b.Search) + ": search"
	random := kh.bound(b.Random) + ": curious"
	home := kh.bound(b.Home) + ": home"

	if kh.isInTextInputMode() {
		return []string{"enter: search", b.Back + ": cancel", random}
	}

	switch kh.app.state.Screen {
	case state.Home:
		help := []string{search, random}
		if len(kh.app.featured) > 0 {
			help = append([]string{"enter: read"}, help...)
		}
		return append(help, b.Quit+": quit")

	case state.Results:
		return []string{"enter: read", search, random, home, b.Back + ": home"}

	case state.Article:
		return []string{kh.bound(b.Open) + ": open in browser", search, random, home, b.Back + ": back"}

	default:
		return []string{}
	}
}
