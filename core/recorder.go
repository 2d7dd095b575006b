package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amielabs/amie-core/core/audio"
)

// recorder accumulates raw PCM between button-down and button-up.
type recorder struct {
	input AudioInput

	mu        sync.Mutex
	buf       []byte
	recording bool
}

func newRecorder(input AudioInput) *recorder {
	return &recorder{input: input}
}

func (r *recorder) active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *recorder) start(ctx context.Context) error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return nil
	}
	r.buf = nil
	r.recording = true
	r.mu.Unlock()

	if err := r.input.StartCapture(ctx, r.append); err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return fmt.Errorf("failed to start capture: %w", err)
	}
	return nil
}

func (r *recorder) append(chunk []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	r.buf = append(r.buf, chunk...)
}

// stop ends capture and returns the recorded PCM with its play duration.
func (r *recorder) stop() ([]byte, time.Duration, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, 0, nil
	}
	r.recording = false
	pcm := r.buf
	r.buf = nil
	r.mu.Unlock()

	if err := r.input.StopCapture(); err != nil {
		return pcm, r.encoding().Duration(len(pcm)), fmt.Errorf("failed to stop capture: %w", err)
	}
	return pcm, r.encoding().Duration(len(pcm)), nil
}

func (r *recorder) encoding() audio.EncodingInfo {
	info := r.input.EncodingInfo()
	if info.IsZero() {
		return audio.EncodingInfo{SampleRate: audio.DefaultSampleRate, Format: audio.DefaultFormat}
	}
	return info
}
