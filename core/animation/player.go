package animation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amielabs/amie-core/core/audio/envelope"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Playback triggers remote audio playback, typically on the speaker box.
type Playback interface {
	Play(ctx context.Context, url string, format string) error
}

// PlayerOptions tune how playback and animation are glued together.
type PlayerOptions struct {
	// BufferDelay is how long to wait between triggering remote playback and
	// starting the mouth, covering the speaker's fetch and buffer latency.
	BufferDelay time.Duration
	// Envelope options are forwarded to the amplitude analysis.
	Envelope []envelope.Option
}

type PlayerOption func(*PlayerOptions)

func WithBufferDelay(d time.Duration) PlayerOption {
	return func(o *PlayerOptions) { o.BufferDelay = d }
}

func WithEnvelopeOptions(opts ...envelope.Option) PlayerOption {
	return func(o *PlayerOptions) { o.Envelope = append(o.Envelope, opts...) }
}

// Player runs the speak-and-animate sequence: analyze the clip, start remote
// playback, wait out the speaker's buffering, then run the scheduler in the
// background while the caller gets on with collecting events.
type Player struct {
	playback Playback
	send     SendFunc
	options  PlayerOptions
}

func NewPlayer(playback Playback, send SendFunc, opts ...PlayerOption) *Player {
	options := PlayerOptions{BufferDelay: 400 * time.Millisecond}
	for _, opt := range opts {
		opt(&options)
	}
	return &Player{playback: playback, send: send, options: options}
}

// Handle tracks one running animation.
type Handle struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// Await blocks until the animation finishes and reports how it ended.
// Cancellation surfaces as context.Canceled.
func (h *Handle) Await() error {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Cancel stops the animation early. The mouth still closes; the remote audio
// keeps playing and is the caller's to stop.
func (h *Handle) Cancel() {
	h.cancel()
}

// Play analyzes mp3, tells the speaker to stream clipURL, and starts the
// mouth animation once the buffer delay has passed. It returns as soon as the
// animation goroutine is launched.
func (p *Player) Play(ctx context.Context, clipURL string, mp3 []byte) (*Handle, error) {
	ctx, span := tracer.Start(ctx, "play clip with lip sync")
	defer span.End()
	span.SetAttributes(attribute.String("clip.url", clipURL))

	env, err := envelope.FromMP3(ctx, mp3, p.options.Envelope...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to analyze clip: %w", err)
	}

	return p.PlayEnvelope(ctx, clipURL, env)
}

// PlayEnvelope is Play for callers that already ran the amplitude analysis.
func (p *Player) PlayEnvelope(ctx context.Context, clipURL string, env envelope.Envelope) (*Handle, error) {
	if err := p.playback.Play(ctx, clipURL, "mp3"); err != nil {
		return nil, fmt.Errorf("failed to start remote playback: %w", err)
	}

	animCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	handle := &Handle{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer close(handle.done)

		if err := sleepUntil(animCtx, time.Now().Add(p.options.BufferDelay)); err != nil {
			closeMouth(p.send)
			handle.mu.Lock()
			handle.err = err
			handle.mu.Unlock()
			return
		}

		err := Scheduler{}.Run(animCtx, env, p.send)
		handle.mu.Lock()
		handle.err = err
		handle.mu.Unlock()
	}()

	return handle, nil
}
