// Package envelope turns an audio clip into a per-frame mouth openness
// envelope for lip sync. The analysis runs RMS per window, normalizes
// against the clip's own peak, bends the result with a power curve, gates
// silence, smooths with an exponential moving average, and trims trailing
// silence so the mouth never keeps moving after the audio ends.
package envelope

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Envelope is the analysis result: one openness value in [MinOpen, MaxOpen]
// per frame, plus the real duration of the source audio. AudioDuration is
// longer than the animation whenever trailing silence was trimmed or the
// duration scale capped the frame count.
type Envelope struct {
	Frames        []float64
	FrameDuration time.Duration
	AudioDuration time.Duration
}

// FromMP3 decodes an MP3 clip and extracts its envelope.
func FromMP3(ctx context.Context, data []byte, opts ...Option) (Envelope, error) {
	_, span := tracer.Start(ctx, "extract envelope from mp3")
	defer span.End()
	span.SetAttributes(attribute.Int("audio.bytes", len(data)))

	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Envelope{}, fmt.Errorf("failed to decode mp3: %w", err)
	}

	samples, err := decodeMono(decoder)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Envelope{}, fmt.Errorf("failed reading mp3 samples: %w", err)
	}

	env := FromSamples(samples, decoder.SampleRate(), opts...)
	span.SetAttributes(attribute.Int("envelope.frames", len(env.Frames)))
	return env, nil
}

// FromSamples extracts the envelope from mono float samples in [-1, 1].
func FromSamples(samples []float64, sampleRate int, opts ...Option) Envelope {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	audioDuration := time.Duration(0)
	if sampleRate > 0 {
		audioDuration = time.Duration(float64(len(samples)) / float64(sampleRate) * float64(time.Second))
	}

	env := Envelope{FrameDuration: options.FrameDuration, AudioDuration: audioDuration}

	frameSamples := int(float64(sampleRate) * options.FrameDuration.Seconds())
	if frameSamples == 0 || len(samples) == 0 {
		return env
	}

	amplitudes := frameRMS(samples, frameSamples)
	if len(amplitudes) == 0 {
		return env
	}

	normalizeToPeak(amplitudes)

	for i, a := range amplitudes {
		a = math.Pow(a, options.PowerCurve)
		if a <= options.SilenceThreshold {
			a = 0
		}
		amplitudes[i] = a
	}

	prev := 0.0
	for i, a := range amplitudes {
		prev = options.SmoothingAlpha*prev + (1-options.SmoothingAlpha)*a
		amplitudes[i] = math.Max(options.MinOpen, math.Min(options.MaxOpen, prev))
	}

	amplitudes = trimTrailingSilence(amplitudes, options.TrimThreshold, options.TailFrames)

	// The face renderer falls behind real-time playback, so a full-length
	// animation would still be chewing after the audio stops.
	targetFrames := int(audioDuration.Seconds() * options.DurationScale / options.FrameDuration.Seconds())
	if targetFrames > 0 && len(amplitudes) > targetFrames {
		amplitudes = amplitudes[:targetFrames]
	}

	env.Frames = amplitudes
	return env
}

func frameRMS(samples []float64, frameSamples int) []float64 {
	numFrames := len(samples) / frameSamples
	amplitudes := make([]float64, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		frame := samples[i*frameSamples : (i+1)*frameSamples]
		sum := 0.0
		for _, s := range frame {
			sum += s * s
		}
		amplitudes = append(amplitudes, math.Sqrt(sum/float64(len(frame))))
	}
	return amplitudes
}

// normalizeToPeak scales every frame against the loudest frame of the clip,
// which keeps quiet voices and loud voices moving the mouth the same way.
func normalizeToPeak(amplitudes []float64) {
	peak := 0.0
	for _, a := range amplitudes {
		if a > peak {
			peak = a
		}
	}
	if peak <= 0 {
		return
	}
	for i := range amplitudes {
		amplitudes[i] /= peak
	}
}

func trimTrailingSilence(amplitudes []float64, threshold float64, tailFrames int) []float64 {
	lastSound := len(amplitudes) - 1
	for lastSound > 0 && amplitudes[lastSound] < threshold {
		lastSound--
	}
	lastSound = min(len(amplitudes)-1, lastSound+tailFrames)
	return amplitudes[:lastSound+1]
}

// decodeMono reads the decoder's interleaved 16-bit stereo stream and mixes
// it down to mono floats in [-1, 1]. go-mp3 always outputs two channels.
func decodeMono(decoder *mp3.Decoder) ([]float64, error) {
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, 0, len(raw)/4)
	for i := 0; i+3 < len(raw); i += 4 {
		left := int16(binary.LittleEndian.Uint16(raw[i:]))
		right := int16(binary.LittleEndian.Uint16(raw[i+2:]))
		samples = append(samples, (float64(left)+float64(right))/2/32768.0)
	}
	return samples, nil
}
