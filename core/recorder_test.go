package pipeline

import (
	"context"
	"testing"
	"time"
)

func TestRecorderAccumulatesBetweenStartAndStop(t *testing.T) {
	input := &fakeInput{}
	rec := newRecorder(input)

	if rec.active() {
		t.Fatal("expected recorder idle before start")
	}
	if err := rec.start(context.Background()); err != nil {
		t.Fatalf("failed to start recorder: %v", err)
	}
	if !rec.active() {
		t.Fatal("expected recorder active after start")
	}

	rec.append(make([]byte, 8000))
	rec.append(make([]byte, 8000))

	pcm, duration, err := rec.stop()
	if err != nil {
		t.Fatalf("failed to stop recorder: %v", err)
	}
	if len(pcm) != 16000 {
		t.Fatalf("expected 16000 bytes recorded, got %d", len(pcm))
	}
	// 16000 bytes of 16kHz s16 mono is half a second.
	if duration != 500*time.Millisecond {
		t.Fatalf("expected 500ms clip, got %v", duration)
	}
	if input.stopped != 1 {
		t.Fatalf("expected capture stopped once, got %d", input.stopped)
	}
}

func TestRecorderIgnoresAudioWhileIdle(t *testing.T) {
	rec := newRecorder(&fakeInput{})

	rec.append(make([]byte, 100))
	if err := rec.start(context.Background()); err != nil {
		t.Fatalf("failed to start recorder: %v", err)
	}
	rec.append(make([]byte, 100))
	pcm, _, err := rec.stop()
	if err != nil {
		t.Fatalf("failed to stop recorder: %v", err)
	}
	if len(pcm) != 100 {
		t.Fatalf("expected only audio captured while recording, got %d bytes", len(pcm))
	}
	rec.append(make([]byte, 100))

	if pcm, _, err := rec.stop(); err != nil || pcm != nil {
		t.Fatalf("expected stop on an idle recorder to be a no-op, got %v, %v", pcm, err)
	}
}
