package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amielabs/amie-core/core/events"
	"github.com/amielabs/amie-core/core/persona"
)

// converse runs the press-to-talk loop: hold the button to speak, release
// to hear the reply. It returns when ctx is cancelled.
func (p *Pipeline) converse(ctx context.Context, personality persona.Personality) error {
	ctx, span := tracer.Start(ctx, "pipeline.converse")
	defer span.End()

	if p.audioInput == nil || p.transcriber == nil || p.responder == nil {
		return errors.New("pipeline: conversation path not configured")
	}

	rec := newRecorder(p.audioInput)
	defer func() {
		if rec.active() {
			if _, _, err := rec.stop(); err != nil {
				logger.WarnContext(ctx, "failed to stop capture on shutdown", "error", err)
			}
		}
	}()

	var history []persona.Turn
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		collected, err := p.device.CollectEvents()
		if err != nil {
			return fmt.Errorf("failed to collect events: %w", err)
		}
		for _, event := range collected {
			switch event.(type) {
			case events.ButtonDownEvent:
				p.handleButtonDown(ctx, rec)
			case events.ButtonUpEvent:
				p.handleButtonUp(ctx, rec, personality, &history)
			case events.ButtonPressEvent:
				// Older firmware sends a single press event, so it toggles.
				if rec.active() {
					p.handleButtonUp(ctx, rec, personality, &history)
				} else {
					p.handleButtonDown(ctx, rec)
				}
			}
		}

		if err := sleepFor(ctx, p.pollInterval); err != nil {
			return err
		}
	}
}

func (p *Pipeline) handleButtonDown(ctx context.Context, rec *recorder) {
	if rec.active() {
		return
	}
	if err := rec.start(ctx); err != nil {
		logger.WarnContext(ctx, "failed to start recording", "error", err)
		return
	}
	logger.DebugContext(ctx, "recording started")
}

func (p *Pipeline) handleButtonUp(ctx context.Context, rec *recorder, personality persona.Personality, history *[]persona.Turn) {
	if !rec.active() {
		return
	}
	pcm, duration, err := rec.stop()
	if err != nil {
		logger.WarnContext(ctx, "failed to stop recording", "error", err)
		return
	}
	logger.DebugContext(ctx, "recording stopped", "duration", duration)

	if duration < p.minClipDuration {
		logger.DebugContext(ctx, "recording too short, ignoring", "duration", duration)
		return
	}
	p.handleUtterance(ctx, personality, history, pcm)
}

// handleUtterance transcribes one recording and speaks the reply. Failures
// are logged and skipped so one bad turn does not end the date.
func (p *Pipeline) handleUtterance(ctx context.Context, personality persona.Personality, history *[]persona.Turn, pcm []byte) {
	ctx, span := tracer.Start(ctx, "pipeline.utterance")
	defer span.End()
	turnID := uuid.NewString()

	text, err := p.transcriber.TranscribeClip(ctx, pcm, p.audioInput.EncodingInfo())
	if err != nil {
		logger.WarnContext(ctx, "failed to transcribe recording", "error", err)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.DebugContext(ctx, "empty transcript, ignoring")
		return
	}
	logger.InfoContext(ctx, "user said", "turn", turnID, "text", text)
	if p.options.onTranscript != nil {
		p.options.onTranscript(text)
	}

	reply, err := p.responder.Respond(ctx, personality, *history, text)
	if err != nil {
		logger.WarnContext(ctx, "failed to generate reply", "error", err)
		return
	}
	*history = append(*history, persona.Turn{User: text, Assistant: reply})
	logger.InfoContext(ctx, "replying", "turn", turnID, "text", reply)
	if p.options.onResponse != nil {
		p.options.onResponse(reply)
	}

	if err := p.speak(ctx, reply); err != nil {
		logger.WarnContext(ctx, "failed to speak reply", "error", err)
	}
}

func sleepFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
