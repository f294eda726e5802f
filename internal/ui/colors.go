package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var styles = newTheme()

// theme colors the resolve flow: green for a clean run, amber when tracks were dropped.
type theme struct {
	heading lipgloss.Style
	clean   lipgloss.Style
	failed  lipgloss.Style
	dropped lipgloss.Style
	muted   lipgloss.Style
}

func newTheme() theme {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return theme{
		heading: fg("#1DB954").Bold(true).MarginBottom(1),
		clean:   fg("#04B575").Bold(true),
		failed:  fg("#FF5F57").Bold(true),
		dropped: fg("#FFA500"),
		muted:   fg("#626262").Italic(true),
	}
}

// summary marks a run summary by the level ResolveResult.Summary chose for it.
func (t theme) summary(level log.Level, text string) string {
	if level == log.WarnLevel {
		return t.dropped.Render("⚠ " + text)
	}
	return t.clean.Render("✓ " + text)
}
