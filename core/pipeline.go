// Package pipeline runs the full date flow: mirror the camera to the
// display, wait for the date button, build a personality from the captured
// frame, then hold a spoken conversation with synced mouth animation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amielabs/amie-core/core/events"
	"github.com/amielabs/amie-core/core/persona"
	"github.com/amielabs/amie-core/core/texttospeech"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DisplayWidth and DisplayHeight match the round display's framebuffer.
	DisplayWidth  = 480
	DisplayHeight = 480

	defaultBootDrain       = 1500 * time.Millisecond
	defaultPollInterval    = 10 * time.Millisecond
	defaultMinClipDuration = 300 * time.Millisecond
)

// defaultButtonRegion is where the firmware draws the "date me" button.
var defaultButtonRegion = Region{X0: 150, Y0: 400, X1: 330, Y1: 455}

var (
	errNoDevice      = errors.New("pipeline: no device link configured")
	errNoFrameSource = errors.New("pipeline: no frame source configured")
)

type Pipeline struct {
	device      DeviceLink
	frames      FrameSource
	generator   persona.Generator
	responder   persona.Responder
	synthesizer texttospeech.Synthesizer
	transcriber Transcriber
	audioInput  AudioInput
	clips       ClipStore
	player      SpeechPlayer
	servo       Servo

	buttonRegion    Region
	touchAnywhere   bool
	bootDrain       time.Duration
	pollInterval    time.Duration
	minClipDuration time.Duration

	options RunOptions
}

func New(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		buttonRegion:    defaultButtonRegion,
		bootDrain:       defaultBootDrain,
		pollInterval:    defaultPollInterval,
		minClipDuration: defaultMinClipDuration,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drives the whole flow until ctx is cancelled. It returns nil on
// cancellation and an error only when a collaborator fails in a way the
// flow cannot continue past.
func (p *Pipeline) Run(ctx context.Context, opts ...RunOption) error {
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	p.options = RunOptions{}
	for _, opt := range opts {
		opt(&p.options)
	}

	if p.device == nil {
		return errNoDevice
	}
	if p.frames == nil {
		return errNoFrameSource
	}

	if err := p.device.DrainBoot(p.bootDrain); err != nil {
		logger.WarnContext(ctx, "failed to drain boot output", "error", err)
	}

	frame, err := p.streamUntilPressed(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	personality, err := p.startDate(ctx, frame)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := p.converse(ctx, *personality); err != nil && !errors.Is(err, context.Canceled) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// streamUntilPressed mirrors camera frames to the display until the date
// button is hit, returning the frame that was on screen at that moment.
func (p *Pipeline) streamUntilPressed(ctx context.Context) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "pipeline.stream")
	defer span.End()

	if _, err := p.device.Face(ctx, false); err != nil {
		logger.WarnContext(ctx, "failed to leave face mode", "error", err)
	}

	var lastFrame []byte
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := p.frames.NextFrame(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read camera frame: %w", err)
		}
		lastFrame = frame

		if _, err := p.device.ShowImage(ctx, frame); err != nil {
			return nil, fmt.Errorf("failed to push frame: %w", err)
		}

		collected, err := p.device.CollectEvents()
		if err != nil {
			return nil, fmt.Errorf("failed to collect events: %w", err)
		}
		if p.datePressed(ctx, collected) {
			return lastFrame, nil
		}
	}
}

func (p *Pipeline) datePressed(ctx context.Context, collected []events.Event) bool {
	for _, event := range collected {
		switch e := event.(type) {
		case events.TouchEvent:
			logger.DebugContext(ctx, "touch", "x", e.X, "y", e.Y)
			if p.touchAnywhere || p.buttonRegion.Contains(e.X, e.Y) {
				return true
			}
		case events.ButtonPressEvent, events.ButtonDownEvent:
			return true
		}
	}
	return false
}

// startDate builds a personality from the captured frame, points the
// interest gauge, switches the face on, and speaks the opener.
func (p *Pipeline) startDate(ctx context.Context, frame []byte) (*persona.Personality, error) {
	ctx, span := tracer.Start(ctx, "pipeline.start-date")
	defer span.End()

	if p.options.onCapture != nil {
		p.options.onCapture(frame)
	}

	if p.generator == nil {
		return nil, errors.New("pipeline: no persona generator configured")
	}
	personality, err := p.generator.GeneratePersonality(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("failed to generate personality: %w", err)
	}
	logger.InfoContext(ctx, "personality generated",
		"name", personality.Name, "interest", personality.Interest)
	if p.options.onPersonality != nil {
		p.options.onPersonality(*personality)
	}

	p.showInterest(ctx, personality.Interest)

	if _, err := p.device.Face(ctx, true); err != nil {
		logger.WarnContext(ctx, "failed to enter face mode", "error", err)
	}

	if personality.Starter != "" {
		if err := p.speak(ctx, personality.Starter); err != nil {
			logger.WarnContext(ctx, "failed to speak opener", "error", err)
		}
	}
	return personality, nil
}

// showInterest drives both interest displays: the servo gauge when one is
// wired, and the on-screen hearts always.
func (p *Pipeline) showInterest(ctx context.Context, interest int) {
	love := persona.Personality{Interest: interest}.Love()
	if p.servo != nil {
		servoLove, err := p.servo.SetInterest(float64(interest))
		if err != nil {
			logger.WarnContext(ctx, "failed to point interest gauge", "error", err)
		} else {
			love = servoLove
		}
	}
	if _, err := p.device.Love(ctx, love); err != nil {
		logger.WarnContext(ctx, "failed to set love level", "error", err)
	}
}

// speak synthesizes text, serves it as a clip, and plays it through the
// speaker with the mouth animated in sync. It blocks until playback and
// animation finish.
func (p *Pipeline) speak(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "pipeline.speak")
	defer span.End()

	if p.synthesizer == nil || p.clips == nil || p.player == nil {
		return errors.New("pipeline: speech path not configured")
	}

	mp3, err := p.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}

	name, err := p.clips.Store(ctx, mp3, "mp3")
	if err != nil {
		return fmt.Errorf("failed to store clip: %w", err)
	}
	clipURL, err := p.clips.URL(name)
	if err != nil {
		return fmt.Errorf("failed to build clip url: %w", err)
	}

	handle, err := p.player.Play(ctx, clipURL, mp3)
	if err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	if err := handle.Await(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("playback ended with error: %w", err)
	}
	return nil
}
