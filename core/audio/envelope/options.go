package envelope

import "time"

// Options tune the amplitude analysis. The defaults were dialed in against
// the display's face renderer, which redraws roughly every 25ms and lags
// audio playback slightly.
type Options struct {
	// FrameDuration is the width of one analysis window and the cadence at
	// which mouth values are meant to be sent.
	FrameDuration time.Duration
	// SmoothingAlpha is the exponential moving average weight given to the
	// previous frame. 0 disables smoothing, 1 freezes the mouth.
	SmoothingAlpha float64
	// PowerCurve is the exponent applied after normalization. Values below 1
	// make quiet speech more visible.
	PowerCurve float64
	// SilenceThreshold closes the mouth fully when the normalized amplitude
	// falls below it.
	SilenceThreshold float64
	// TrimThreshold marks a trailing frame as silent for end trimming.
	TrimThreshold float64
	// TailFrames is how many frames to keep past the last audible frame so
	// the mouth closes naturally instead of snapping shut.
	TailFrames int
	// DurationScale caps the animation at this fraction of the clip length,
	// compensating for the renderer falling behind playback.
	DurationScale float64
	// MinOpen and MaxOpen clamp the final values.
	MinOpen float64
	MaxOpen float64
}

func defaultOptions() Options {
	return Options{
		FrameDuration:    30 * time.Millisecond,
		SmoothingAlpha:   0.35,
		PowerCurve:       0.6,
		SilenceThreshold: 0.02,
		TrimThreshold:    0.01,
		TailFrames:       3,
		DurationScale:    0.7,
		MinOpen:          0.0,
		MaxOpen:          1.0,
	}
}

type Option func(*Options)

func WithFrameDuration(d time.Duration) Option {
	return func(o *Options) { o.FrameDuration = d }
}

func WithSmoothingAlpha(alpha float64) Option {
	return func(o *Options) { o.SmoothingAlpha = alpha }
}

func WithPowerCurve(exp float64) Option {
	return func(o *Options) { o.PowerCurve = exp }
}

func WithSilenceThreshold(threshold float64) Option {
	return func(o *Options) { o.SilenceThreshold = threshold }
}

func WithDurationScale(scale float64) Option {
	return func(o *Options) { o.DurationScale = scale }
}

func WithOpenRange(min, max float64) Option {
	return func(o *Options) {
		o.MinOpen = min
		o.MaxOpen = max
	}
}
