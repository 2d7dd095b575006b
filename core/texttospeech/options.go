// Package texttospeech defines the synthesis contract the conversation flow
// speaks through. Implementations produce one complete encoded clip per
// utterance; the speaker box can only fetch whole files, so there is no
// streaming surface here.
package texttospeech

import "context"

type SynthesisOptions struct {
	// AudioCallback is called for every audio chunk as it arrives, in order,
	// before Synthesize returns the assembled clip.
	AudioCallback func(audio []byte)
	// ErrorCallback is called when synthesis fails mid-stream, in addition to
	// the error Synthesize returns.
	ErrorCallback func(error)
}

type SynthesisOption func(*SynthesisOptions)

func WithAudioCallback(callback func(audio []byte)) SynthesisOption {
	return func(o *SynthesisOptions) { o.AudioCallback = callback }
}

func WithErrorCallback(callback func(error)) SynthesisOption {
	return func(o *SynthesisOptions) { o.ErrorCallback = callback }
}

// Synthesizer turns one piece of text into one encoded audio clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts ...SynthesisOption) ([]byte, error)
}
