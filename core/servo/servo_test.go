package servo

import (
	"bytes"
	"sync"
	"testing"
)

type fakePort struct {
	mu     sync.Mutex
	writes bytes.Buffer
}

func (f *fakePort) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes.Write(data)
}

func (f *fakePort) Close() error { return nil }

func TestInterestToAngleCoversTheTravelWindow(t *testing.T) {
	cases := []struct {
		interest float64
		want     int
	}{
		{0, 120},
		{5, 135},
		{10, 150},
		{-2, 120},
		{12, 150},
	}
	for _, tc := range cases {
		if got := InterestToAngle(tc.interest); got != tc.want {
			t.Fatalf("interest %f mapped to angle %d, want %d", tc.interest, got, tc.want)
		}
	}
}

func TestInterestToLoveClamps(t *testing.T) {
	if got := InterestToLove(7.5); got != 0.75 {
		t.Fatalf("interest 7.5 mapped to love %f, want 0.75", got)
	}
	if got := InterestToLove(-1); got != 0 {
		t.Fatalf("negative interest mapped to love %f, want 0", got)
	}
	if got := InterestToLove(15); got != 1 {
		t.Fatalf("interest 15 mapped to love %f, want 1", got)
	}
}

func TestSetAngleClampsAndTerminatesLine(t *testing.T) {
	port := &fakePort{}
	link := &Link{port: port}

	if err := link.SetAngle(200); err != nil {
		t.Fatalf("expected the write to succeed, got error: %v", err)
	}
	if err := link.SetAngle(10); err != nil {
		t.Fatalf("expected the write to succeed, got error: %v", err)
	}

	port.mu.Lock()
	written := port.writes.String()
	port.mu.Unlock()
	if written != "S150\nS120\n" {
		t.Fatalf("expected clamped newline-terminated commands, got %q", written)
	}
}

func TestSetColorWiresAllChannels(t *testing.T) {
	port := &fakePort{}
	link := &Link{port: port}

	if err := link.SetColor(255, 64, 0); err != nil {
		t.Fatalf("expected the write to succeed, got error: %v", err)
	}

	port.mu.Lock()
	written := port.writes.String()
	port.mu.Unlock()
	if written != "C255,64,0\n" {
		t.Fatalf("unexpected color command: %q", written)
	}
}

func TestSetInterestDrivesArmAndReturnsLove(t *testing.T) {
	port := &fakePort{}
	link := &Link{port: port}

	love, err := link.SetInterest(10)
	if err != nil {
		t.Fatalf("expected the write to succeed, got error: %v", err)
	}
	if love != 1 {
		t.Fatalf("expected love 1 for full interest, got %f", love)
	}

	port.mu.Lock()
	written := port.writes.String()
	port.mu.Unlock()
	if written != "S150\n" {
		t.Fatalf("expected the arm driven to full travel, got %q", written)
	}
}
