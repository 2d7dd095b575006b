package devicelink

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amielabs/amie-core/core/events"
)

type fakeTransport struct {
	mu      sync.Mutex
	reads   [][]byte
	readErr error
	writes  [][]byte
	closed  bool
}

func (f *fakeTransport) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	recorded := make([]byte, len(data))
	copy(recorded, data)
	f.writes = append(f.writes, recorded)
	return len(data), nil
}

func (f *fakeTransport) ReadAvailable() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.reads) == 0 {
		if f.readErr != nil {
			return nil, f.readErr
		}
		return nil, nil
	}
	next := f.reads[0]
	f.reads = f.reads[1:]
	return next, nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) writtenLines(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	var lines []string
	for _, write := range f.writes {
		lines = append(lines, string(write))
	}
	return lines
}

func TestSendCommandReturnsFirstResponse(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("{\"status\":\"ok\",\"detail\":\"drawn\"}\n"),
	}}
	session := NewSession(transport)

	resp, err := session.SendCommand(context.Background(), Command{"cmd": "blink"})
	if err != nil {
		t.Fatalf("expected command to succeed, got error: %v", err)
	}
	if resp.Status() != StatusOK {
		t.Fatalf("expected ok status, got %q", resp.Status())
	}
	if resp["detail"] != "drawn" {
		t.Fatalf("expected response fields preserved, got %v", resp)
	}

	writes := transport.writtenLines(t)
	if len(writes) != 1 || !strings.HasSuffix(writes[0], "\n") {
		t.Fatalf("expected exactly one newline-terminated write, got %v", writes)
	}
}

func TestSendCommandQueuesEventsArrivingBeforeResponse(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("{\"event\":\"touch\",\"x\":240,\"y\":120}\n{\"event\":\"button\"}\n{\"status\":\"ok\"}\n"),
	}}
	session := NewSession(transport)

	resp, err := session.SendCommand(context.Background(), Command{"cmd": "face", "on": true})
	if err != nil {
		t.Fatalf("expected command to succeed, got error: %v", err)
	}
	if resp.Status() != StatusOK {
		t.Fatalf("expected the interleaved events skipped over, got status %q", resp.Status())
	}

	queued, err := session.CollectEvents()
	if err != nil {
		t.Fatalf("expected collecting events to succeed, got error: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("expected both interleaved events queued, got %d", len(queued))
	}
	touch, ok := queued[0].(events.TouchEvent)
	if !ok {
		t.Fatalf("expected first queued event to be a touch, got %T", queued[0])
	}
	if touch.X != 240 || touch.Y != 120 {
		t.Fatalf("expected touch coordinates preserved, got (%d,%d)", touch.X, touch.Y)
	}
	if queued[1].Kind() != events.KindButtonPress {
		t.Fatalf("expected second queued event to be a button press, got %v", queued[1].Kind())
	}
}

func TestSendCommandTimesOutWithSentinelResponse(t *testing.T) {
	session := NewSession(&fakeTransport{})

	resp, err := session.SendCommand(context.Background(), Command{"cmd": "blink"},
		WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("a timeout is not an error, got: %v", err)
	}
	if !resp.IsTimeout() {
		t.Fatalf("expected the timeout sentinel, got %v", resp)
	}
}

func TestSendCommandSurfacesConnectionClosed(t *testing.T) {
	transport := &fakeTransport{readErr: ErrConnectionClosed}
	session := NewSession(transport)

	_, err := session.SendCommand(context.Background(), Command{"cmd": "blink"})
	if !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got: %v", err)
	}
}

func TestSendCommandDropsMalformedLines(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("boot: wifi up\nnot json at all\n{\"status\":\"ok\"}\n"),
	}}
	session := NewSession(transport)

	resp, err := session.SendCommand(context.Background(), Command{"cmd": "wifi"})
	if err != nil {
		t.Fatalf("expected debris to be skipped silently, got error: %v", err)
	}
	if resp.Status() != StatusOK {
		t.Fatalf("expected the real response after debris, got %v", resp)
	}

	queued, err := session.CollectEvents()
	if err != nil {
		t.Fatalf("expected collecting events to succeed, got error: %v", err)
	}
	if len(queued) != 0 {
		t.Fatalf("expected malformed lines not to become events, got %v", queued)
	}
}

func TestNotifyWritesWithoutReading(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("{\"status\":\"ok\"}\n"),
	}}
	session := NewSession(transport)

	if err := session.Notify(Command{"cmd": "mouth", "open": 0.5}); err != nil {
		t.Fatalf("expected notify to succeed, got error: %v", err)
	}

	transport.mu.Lock()
	remaining := len(transport.reads)
	transport.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("notify must not consume buffered responses, %d reads left", remaining)
	}

	writes := transport.writtenLines(t)
	if len(writes) != 1 || !strings.HasSuffix(writes[0], "\n") {
		t.Fatalf("expected one newline-terminated write, got %v", writes)
	}
}

func TestCollectEventsDiscardsStaleResponses(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("{\"status\":\"ok\"}\n{\"event\":\"touch\",\"x\":1,\"y\":2}\n"),
	}}
	session := NewSession(transport)

	queued, err := session.CollectEvents()
	if err != nil {
		t.Fatalf("expected collecting events to succeed, got error: %v", err)
	}
	if len(queued) != 1 || queued[0].Kind() != events.KindTouch {
		t.Fatalf("expected only the touch event, got %v", queued)
	}

	queued, err = session.CollectEvents()
	if err != nil {
		t.Fatalf("expected a second collect to succeed, got error: %v", err)
	}
	if len(queued) != 0 {
		t.Fatalf("expected the queue cleared after collection, got %v", queued)
	}
}

func TestEventQueueDropsOldestWhenFull(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("{\"event\":\"touch\",\"x\":1,\"y\":1}\n" +
			"{\"event\":\"touch\",\"x\":2,\"y\":2}\n" +
			"{\"event\":\"touch\",\"x\":3,\"y\":3}\n"),
	}}
	session := NewSession(transport, WithEventQueueCap(2))

	queued, err := session.CollectEvents()
	if err != nil {
		t.Fatalf("expected collecting events to succeed, got error: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("expected the queue capped at 2, got %d", len(queued))
	}
	first, ok := queued[0].(events.TouchEvent)
	if !ok || first.X != 2 {
		t.Fatalf("expected the oldest event dropped, got %v", queued[0])
	}
}

func TestDrainBootDiscardsEverythingBuffered(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("boot garbage\n{\"event\":\"touch\",\"x\":1,\"y\":2}\n{\"status\":\"ok\""),
	}}
	session := NewSession(transport)

	if err := session.DrainBoot(0); err != nil {
		t.Fatalf("expected drain to succeed, got error: %v", err)
	}

	queued, err := session.CollectEvents()
	if err != nil {
		t.Fatalf("expected collecting events to succeed, got error: %v", err)
	}
	if len(queued) != 0 {
		t.Fatalf("boot chatter must not surface as events, got %v", queued)
	}
}

func TestSendCommandHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := NewSession(&fakeTransport{})
	_, err := session.SendCommand(ctx, Command{"cmd": "blink"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation surfaced, got: %v", err)
	}
}
