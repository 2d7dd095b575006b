// Package speechtotext defines the transcription contract for push-to-talk
// input: audio goes in while the button is held, the accumulated transcript
// comes back through a callback once the stream is closed.
package speechtotext

import "github.com/amielabs/amie-core/core/audio"

type TranscriptionOptions struct {
	// PartialTranscriptionCallback is called for every finalized segment as
	// it arrives.
	PartialTranscriptionCallback func(transcript string)
	// TranscriptionCallback is called with the full accumulated transcript
	// when the utterance ends or the stream closes.
	TranscriptionCallback func(transcript string)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	EncodingInfo audio.EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

func WithTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithPartialTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.PartialTranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
