// Package tui is a small terminal monitor for device events.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amielabs/amie-core/core/events"
)

const (
	pollInterval = 100 * time.Millisecond
	maxLines     = 500
)

// EventSource is the device surface the monitor polls.
type EventSource interface {
	CollectEvents() ([]events.Event, error)
}

// Run polls source for events and renders them until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, source EventSource) error {
	program := tea.NewProgram(newModel(source), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// eventsMsg carries one poll's worth of device events.
type eventsMsg []events.Event

// errMsg wraps a poll failure for display before quitting.
type errMsg struct {
	err error
}

type model struct {
	source   EventSource
	spinner  spinner.Model
	viewport viewport.Model

	lines  []string
	counts map[events.Kind]int
	width  int
	height int
	ready  bool
	err    error
}

func newModel(source EventSource) model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	return model{
		source:  source,
		spinner: s,
		counts:  map[events.Kind]int{},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, poll(m.source))
}

// poll collects whatever events arrived since the last tick.
func poll(source EventSource) tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		collected, err := source.CollectEvents()
		if err != nil {
			return errMsg{err: err}
		}
		return eventsMsg(collected)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := msg.Height - headerHeight - footerHeight
		if contentHeight < 1 {
			contentHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, contentHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = contentHeight
		}
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()

	case eventsMsg:
		for _, event := range msg {
			m.counts[event.Kind()]++
			m.lines = append(m.lines, formatEvent(event))
		}
		if len(m.lines) > maxLines {
			m.lines = m.lines[len(m.lines)-maxLines:]
		}
		if m.ready && len(msg) > 0 {
			m.viewport.SetContent(strings.Join(m.lines, "\n"))
			m.viewport.GotoBottom()
		}
		return m, poll(m.source)

	case errMsg:
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func formatEvent(event events.Event) string {
	timestamp := mutedStyle.Render(event.Timestamp().Format("15:04:05.000"))
	switch e := event.(type) {
	case events.TouchEvent:
		return fmt.Sprintf("%s %s (%d, %d)", timestamp, touchStyle.Render("touch"), e.X, e.Y)
	case events.ButtonPressEvent:
		return fmt.Sprintf("%s %s", timestamp, buttonStyle.Render("button press"))
	case events.ButtonDownEvent:
		return fmt.Sprintf("%s %s", timestamp, buttonStyle.Render("button down"))
	case events.ButtonUpEvent:
		return fmt.Sprintf("%s %s", timestamp, buttonStyle.Render("button up"))
	default:
		return fmt.Sprintf("%s %s", timestamp, mutedStyle.Render(fmt.Sprintf("%v", event)))
	}
}
