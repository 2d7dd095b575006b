package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amielabs/amie-core/core/events"
)

const (
	headerHeight = 2
	footerHeight = 1
)

var (
	primaryColor = lipgloss.Color("#A78BFA")
	touchColor   = lipgloss.Color("#10B981")
	buttonColor  = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#F87171")
	mutedColor   = lipgloss.Color("#9CA3AF")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	spinnerStyle = lipgloss.NewStyle().Foreground(primaryColor)
	touchStyle   = lipgloss.NewStyle().Foreground(touchColor)
	buttonStyle  = lipgloss.NewStyle().Foreground(buttonColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

func (m model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("event stream failed: %v", m.err)) + "\n"
	}
	if !m.ready {
		return fmt.Sprintf("%s waiting for terminal size...", m.spinner.View())
	}

	header := fmt.Sprintf("%s %s  %s",
		m.spinner.View(),
		titleStyle.Render("amie event monitor"),
		mutedStyle.Render(m.summary()),
	)
	footer := mutedStyle.Render("q to quit")
	return strings.Join([]string{header, "", m.viewport.View(), footer}, "\n")
}

func (m model) summary() string {
	buttons := m.counts[events.KindButtonPress] +
		m.counts[events.KindButtonDown] +
		m.counts[events.KindButtonUp]
	return fmt.Sprintf("touches: %d  buttons: %d", m.counts[events.KindTouch], buttons)
}
