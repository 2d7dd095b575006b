package envelope

import (
	"math"
	"testing"
	"time"
)

const testSampleRate = 16000

func sineClip(amplitude float64, freq float64, duration time.Duration) []float64 {
	n := int(duration.Seconds() * testSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate)
	}
	return samples
}

func TestSilentClipCollapsesToClosedMouth(t *testing.T) {
	env := FromSamples(make([]float64, testSampleRate), testSampleRate)

	if len(env.Frames) > 4 {
		t.Fatalf("expected trailing silence trimmed to the tail allowance, got %d frames", len(env.Frames))
	}
	for i, frame := range env.Frames {
		if frame != 0 {
			t.Fatalf("expected frame %d closed, got %f", i, frame)
		}
	}
	if env.AudioDuration != time.Second {
		t.Fatalf("expected the real clip duration reported, got %v", env.AudioDuration)
	}
}

func TestSteadyToneRampsTowardFullyOpen(t *testing.T) {
	env := FromSamples(sineClip(1.0, 200, 3*time.Second), testSampleRate)

	if len(env.Frames) == 0 {
		t.Fatal("expected a non-empty envelope for an audible clip")
	}
	last := env.Frames[len(env.Frames)-1]
	if last < 0.9 {
		t.Fatalf("expected the smoothed value to approach 1 on a steady tone, got %f", last)
	}

	// First frame carries the full smoothing weight of the silent start.
	if math.Abs(env.Frames[0]-0.65) > 1e-9 {
		t.Fatalf("expected the first smoothed frame at 0.65, got %f", env.Frames[0])
	}
}

func TestAnimationCappedBelowAudioDuration(t *testing.T) {
	env := FromSamples(sineClip(1.0, 200, 3*time.Second), testSampleRate)

	wantFrames := int(3.0 * 0.7 / 0.03)
	if len(env.Frames) != wantFrames {
		t.Fatalf("expected the animation capped at %d frames, got %d", wantFrames, len(env.Frames))
	}
	if env.AudioDuration != 3*time.Second {
		t.Fatalf("expected the uncapped audio duration reported, got %v", env.AudioDuration)
	}
}

func TestQuietClipNormalizesLikeALoudOne(t *testing.T) {
	loud := FromSamples(sineClip(0.9, 200, time.Second), testSampleRate)
	quiet := FromSamples(sineClip(0.03, 200, time.Second), testSampleRate)

	if len(loud.Frames) != len(quiet.Frames) {
		t.Fatalf("expected identical frame counts, got %d vs %d", len(loud.Frames), len(quiet.Frames))
	}
	for i := range loud.Frames {
		if math.Abs(loud.Frames[i]-quiet.Frames[i]) > 1e-6 {
			t.Fatalf("frame %d diverged after peak normalization: %f vs %f",
				i, loud.Frames[i], quiet.Frames[i])
		}
	}
}

func TestOpenRangeClampsFrames(t *testing.T) {
	env := FromSamples(sineClip(1.0, 200, time.Second), testSampleRate,
		WithOpenRange(0.1, 0.4))

	for i, frame := range env.Frames {
		if frame < 0.1 || frame > 0.4 {
			t.Fatalf("frame %d escaped the configured range: %f", i, frame)
		}
	}
}

func TestEmptyInputYieldsEmptyEnvelope(t *testing.T) {
	env := FromSamples(nil, testSampleRate)

	if len(env.Frames) != 0 {
		t.Fatalf("expected no frames for empty input, got %d", len(env.Frames))
	}
	if env.AudioDuration != 0 {
		t.Fatalf("expected zero duration for empty input, got %v", env.AudioDuration)
	}
}
