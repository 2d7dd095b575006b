package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amielabs/amie-core/core/events"
)

var errTest = errors.New("link dropped")

type stubSource struct{}

func (stubSource) CollectEvents() ([]events.Event, error) { return nil, nil }

func sized(t *testing.T) model {
	t.Helper()
	m, _ := newModel(stubSource{}).Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m.(model)
}

func TestEventsAppendAndCount(t *testing.T) {
	m := sized(t)

	updated, cmd := m.Update(eventsMsg{
		events.NewTouchEvent(120, 440),
		events.NewButtonDownEvent(),
		events.NewButtonUpEvent(),
	})
	m = updated.(model)

	if cmd == nil {
		t.Fatal("expected the poll to be rescheduled")
	}
	if len(m.lines) != 3 {
		t.Fatalf("expected 3 event lines, got %d", len(m.lines))
	}
	if !strings.Contains(m.lines[0], "(120, 440)") {
		t.Fatalf("expected touch coordinates in the line, got %q", m.lines[0])
	}
	if m.counts[events.KindTouch] != 1 {
		t.Fatalf("expected one touch counted, got %d", m.counts[events.KindTouch])
	}
	if !strings.Contains(m.summary(), "touches: 1  buttons: 2") {
		t.Fatalf("unexpected summary %q", m.summary())
	}
}

func TestLineCapKeepsRecentEvents(t *testing.T) {
	m := sized(t)

	batch := make(eventsMsg, 0, maxLines+10)
	for range maxLines + 10 {
		batch = append(batch, events.NewButtonPressEvent())
	}
	updated, _ := m.Update(batch)
	m = updated.(model)

	if len(m.lines) != maxLines {
		t.Fatalf("expected the line buffer capped at %d, got %d", maxLines, len(m.lines))
	}
}

func TestQuitKeys(t *testing.T) {
	m := sized(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestPollErrorQuits(t *testing.T) {
	m := sized(t)
	updated, cmd := m.Update(errMsg{err: errTest})
	m = updated.(model)
	if m.err == nil {
		t.Fatal("expected the error retained for display")
	}
	if cmd == nil {
		t.Fatal("expected a quit command after a poll error")
	}
	if !strings.Contains(m.View(), "event stream failed") {
		t.Fatalf("expected the error rendered, got %q", m.View())
	}
}
