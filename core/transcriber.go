package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amielabs/amie-core/core/audio"
	"github.com/amielabs/amie-core/core/speechtotext"
)

const (
	defaultTranscribeTimeout = 10 * time.Second
	// transcriptGrace is how long to wait for further segments after the
	// first one arrives.
	transcriptGrace = 300 * time.Millisecond
)

// StreamingTranscriber is the streaming STT surface ClipTranscriber adapts.
// It is satisfied by the deepgram transcription client.
type StreamingTranscriber interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	SendAudio(audio []byte) error
	StopStream() error
}

// ClipTranscriber runs one short recording through a streaming transcriber:
// open a stream, push the whole clip, close the stream, and collect whatever
// transcript segments come back before the connection winds down.
type ClipTranscriber struct {
	client  StreamingTranscriber
	timeout time.Duration
}

type ClipTranscriberOption func(*ClipTranscriber)

func WithTranscribeTimeout(timeout time.Duration) ClipTranscriberOption {
	return func(t *ClipTranscriber) { t.timeout = timeout }
}

func NewClipTranscriber(client StreamingTranscriber, opts ...ClipTranscriberOption) *ClipTranscriber {
	t := &ClipTranscriber{client: client, timeout: defaultTranscribeTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TranscribeClip blocks until the transcript arrives or the timeout passes.
// A silent clip yields an empty transcript, not an error.
func (t *ClipTranscriber) TranscribeClip(ctx context.Context, pcm []byte, info audio.EncodingInfo) (string, error) {
	segments := make(chan string, 8)

	err := t.client.Transcribe(ctx,
		speechtotext.WithEncodingInfo(info),
		speechtotext.WithTranscriptionCallback(func(transcript string) {
			select {
			case segments <- transcript:
			default:
			}
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to open transcription stream: %w", err)
	}

	if err := t.client.SendAudio(pcm); err != nil {
		return "", fmt.Errorf("failed to send audio: %w", err)
	}
	if err := t.client.StopStream(); err != nil {
		return "", fmt.Errorf("failed to close transcription stream: %w", err)
	}

	deadline := time.NewTimer(t.timeout)
	defer deadline.Stop()

	var parts []string
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case segment := <-segments:
		parts = append(parts, segment)
	case <-deadline.C:
		// Silence produces no segments at all.
		return "", nil
	}

	grace := time.NewTimer(transcriptGrace)
	defer grace.Stop()
	for {
		select {
		case <-ctx.Done():
			return strings.Join(parts, " "), ctx.Err()
		case segment := <-segments:
			parts = append(parts, segment)
			grace.Reset(transcriptGrace)
		case <-grace.C:
			return strings.Join(parts, " "), nil
		}
	}
}
