// Package audio holds the encoding vocabulary shared by microphone capture,
// transcription, and playback: sample format, sample rate, and the byte math
// tying them to wall-clock time.
package audio

import "time"

const (
	// DefaultSampleRate is what the microphone captures at and what the
	// transcription stream expects.
	DefaultSampleRate = 16000
	DefaultFormat     = "linear16"
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: encodingFormat(DefaultFormat)}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// SilenceValue is the byte that encodes digital silence in this format, used
// to pad capture gaps.
func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	}
	return 0
}

// BytesPerSecond is the raw mono data rate of this encoding.
func (e EncodingInfo) BytesPerSecond() int {
	size := e.Format.ByteSize()
	if size < 0 {
		return -1
	}
	return e.SampleRate * size
}

// Duration converts a captured byte count into playing time. Returns zero for
// unknown formats.
func (e EncodingInfo) Duration(byteLen int) time.Duration {
	rate := e.BytesPerSecond()
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(byteLen) / float64(rate) * float64(time.Second))
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
