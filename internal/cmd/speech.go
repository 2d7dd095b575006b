package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/amielabs/amie-core/core/animation"
	"github.com/amielabs/amie-core/core/audio/envelope"
	"github.com/amielabs/amie-core/core/audioserve"
	"github.com/amielabs/amie-core/core/devicelink"
	"github.com/amielabs/amie-core/core/playback"
	ttsdeepgram "github.com/amielabs/amie-core/core/texttospeech/deepgram"
	"github.com/amielabs/amie-core/internal/config"
)

// startClipServer serves synthesized clips over HTTP so the speaker can
// fetch them. It runs until ctx is cancelled.
func startClipServer(ctx context.Context, cfg config.Config) (*audioserve.Server, error) {
	server, err := audioserve.NewServer(cfg.Clips.Dir, audioserve.WithPort(cfg.Clips.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to start clip server: %w", err)
	}
	go func() {
		if err := server.ListenAndServe(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "clip server stopped:", err)
		}
	}()
	return server, nil
}

// newSpeaker builds the speaker client. Without an explicit host the
// speaker is assumed to live next to the device.
func newSpeaker(cfg config.Config) *playback.Client {
	host := cfg.Speaker.Host
	if host == "" {
		host = cfg.Device.Target
	}
	return playback.NewClientURL(fmt.Sprintf("http://%s:%d", host, cfg.Speaker.Port))
}

func newPlayer(cfg config.Config, speaker *playback.Client, device *devicelink.Device) *animation.Player {
	return animation.NewPlayer(speaker, device.NotifyMouth,
		animation.WithBufferDelay(time.Duration(cfg.Pipeline.BufferDelayMillis)*time.Millisecond),
		animation.WithEnvelopeOptions(envelopeOptions(cfg.Envelope)...),
	)
}

func envelopeOptions(cfg config.EnvelopeConfig) []envelope.Option {
	return []envelope.Option{
		envelope.WithFrameDuration(time.Duration(cfg.FrameMillis) * time.Millisecond),
		envelope.WithSmoothingAlpha(cfg.SmoothingAlpha),
		envelope.WithPowerCurve(cfg.PowerCurve),
		envelope.WithSilenceThreshold(cfg.SilenceThreshold),
		envelope.WithDurationScale(cfg.DurationScale),
	}
}

func newSynthesizer(cfg config.Config) (*ttsdeepgram.TextToSpeechClient, error) {
	voice := ttsdeepgram.VoiceAsteria
	if cfg.Speech.Voice != "" {
		found := false
		for _, v := range ttsdeepgram.GetAvailableVoices() {
			if string(v) == cfg.Speech.Voice {
				voice = v
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown voice %q", cfg.Speech.Voice)
		}
	}
	return ttsdeepgram.NewTextToSpeechClient(voice)
}
