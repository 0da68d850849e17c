package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pders01/wikinsight/internal/insight"
)

// resultsHeadingLines is the height of resultsHeading plus its spacer.
const resultsHeadingLines = 3

// searchFrame draws the search box. The border lights up while typing.
func searchFrame(inputView string, focused bool, inputWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(inputWidth + 4).
		Render(inputView)
}

// resultsHeading shows the hit count and the query that produced it.
func resultsHeading(count int, query string, width int) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render(truncateEnd(MsgResultsCount(count), width-2)),
		renderMuted(truncateEnd(fmt.Sprintf("for %q", query), width-2)),
	)
}

func centeredNotice(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

// helpLine joins key hints, dropping the least important ones from the end
// until the line fits width.
func helpLine(hints []string, width int) string {
	for n := len(hints); n > 0; n-- {
		line := strings.Join(hints[:n], " • ")
		if ansi.StringWidth(line) <= width {
			return HelpStyle.Render(line)
		}
	}
	if len(hints) == 0 {
		return ""
	}
	return HelpStyle.Render(truncateEnd(hints[0], width))
}

// insightSections lays out a summary for the sidebar, wrapped to width.
func insightSections(sum *insight.Summary, width int) []string {
	wrap := func(s string) string {
		if width <= 0 {
			return s
		}
		return ansi.Wordwrap(s, width, "")
	}
	rows := []string{HeaderStyle.Render("TL;DR"), wrap(sum.TLDR), ""}
	rows = append(rows, HeaderStyle.Render("Key takeaways"))
	for _, point := range sum.KeyPoints {
		rows = append(rows, wrap("• "+point))
	}
	rows = append(rows, "",
		HeaderStyle.Render("Context"), wrap(sum.Context), "",
		HeaderStyle.Render("Did you know?"), FunFactStyle.Render(wrap(sum.FunFact)),
	)
	return rows
}
