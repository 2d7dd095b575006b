package pipeline

import (
	"context"
	"time"

	"github.com/amielabs/amie-core/core/animation"
	"github.com/amielabs/amie-core/core/audio"
	"github.com/amielabs/amie-core/core/devicelink"
	"github.com/amielabs/amie-core/core/events"
	"github.com/amielabs/amie-core/core/persona"
	"github.com/amielabs/amie-core/core/texttospeech"
)

type PipelineOption func(*Pipeline)

// DeviceLink is the slice of the device facade the pipeline drives. It is
// satisfied by *devicelink.Device.
type DeviceLink interface {
	DrainBoot(wait time.Duration) error
	CollectEvents() ([]events.Event, error)
	Face(ctx context.Context, on bool) (devicelink.Response, error)
	Love(ctx context.Context, value float64) (devicelink.Response, error)
	ShowImage(ctx context.Context, jpeg []byte, opts ...devicelink.CallOption) (devicelink.Response, error)
}

func WithDevice(device DeviceLink) PipelineOption {
	return func(p *Pipeline) { p.device = device }
}

// FrameSource yields encoded JPEG frames for the mirror stream. NextFrame
// blocks until a frame is available or ctx is cancelled.
type FrameSource interface {
	NextFrame(ctx context.Context) ([]byte, error)
}

func WithFrameSource(frames FrameSource) PipelineOption {
	return func(p *Pipeline) { p.frames = frames }
}

func WithPersonaGenerator(generator persona.Generator) PipelineOption {
	return func(p *Pipeline) { p.generator = generator }
}

func WithResponder(responder persona.Responder) PipelineOption {
	return func(p *Pipeline) { p.responder = responder }
}

func WithSynthesizer(synthesizer texttospeech.Synthesizer) PipelineOption {
	return func(p *Pipeline) { p.synthesizer = synthesizer }
}

// Transcriber turns one recorded clip into text.
type Transcriber interface {
	TranscribeClip(ctx context.Context, pcm []byte, info audio.EncodingInfo) (string, error)
}

func WithTranscriber(transcriber Transcriber) PipelineOption {
	return func(p *Pipeline) { p.transcriber = transcriber }
}

// AudioInput is satisfied by the miniaudio and portaudio capture clients.
type AudioInput interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	EncodingInfo() audio.EncodingInfo
}

func WithAudioInput(input AudioInput) PipelineOption {
	return func(p *Pipeline) { p.audioInput = input }
}

// ClipStore persists synthesized clips and hands out URLs the speaker can
// fetch. It is satisfied by *audioserve.Server.
type ClipStore interface {
	Store(ctx context.Context, data []byte, ext string) (string, error)
	URL(name string) (string, error)
}

func WithClipStore(clips ClipStore) PipelineOption {
	return func(p *Pipeline) { p.clips = clips }
}

// PlaybackHandle tracks one in-flight synced playback.
type PlaybackHandle interface {
	Await() error
	Cancel()
}

// SpeechPlayer plays an MP3 clip through the speaker while animating the
// mouth in sync.
type SpeechPlayer interface {
	Play(ctx context.Context, clipURL string, mp3 []byte) (PlaybackHandle, error)
}

func WithSpeechPlayer(player SpeechPlayer) PipelineOption {
	return func(p *Pipeline) { p.player = player }
}

// WithPlayer wires an animation.Player as the speech player.
func WithPlayer(player *animation.Player) PipelineOption {
	return WithSpeechPlayer(playerAdapter{player})
}

type playerAdapter struct {
	player *animation.Player
}

func (a playerAdapter) Play(ctx context.Context, clipURL string, mp3 []byte) (PlaybackHandle, error) {
	return a.player.Play(ctx, clipURL, mp3)
}

// Servo points the physical interest gauge. It is satisfied by *servo.Link.
type Servo interface {
	SetInterest(interest float64) (float64, error)
}

func WithServo(servo Servo) PipelineOption {
	return func(p *Pipeline) { p.servo = servo }
}

// Region is a rectangular touch target in display coordinates.
type Region struct {
	X0, Y0, X1, Y1 int
}

func (r Region) Contains(x, y int) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// WithButtonRegion overrides the on-screen date button hit area.
func WithButtonRegion(region Region) PipelineOption {
	return func(p *Pipeline) { p.buttonRegion = region }
}

// WithTouchAnywhere makes any touch start the date, not just touches inside
// the button region.
func WithTouchAnywhere() PipelineOption {
	return func(p *Pipeline) { p.touchAnywhere = true }
}

func WithBootDrain(wait time.Duration) PipelineOption {
	return func(p *Pipeline) { p.bootDrain = wait }
}

func WithPollInterval(interval time.Duration) PipelineOption {
	return func(p *Pipeline) { p.pollInterval = interval }
}

// WithMinClipDuration sets the shortest press-to-talk recording that is
// still transcribed.
func WithMinClipDuration(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.minClipDuration = d }
}

type RunOption func(*RunOptions)

type RunOptions struct {
	onCapture     func(jpeg []byte)
	onPersonality func(personality persona.Personality)
	onTranscript  func(text string)
	onResponse    func(text string)
}

// OnCapture is called with the frame that triggered the date, before the
// personality is generated from it.
func OnCapture(callback func(jpeg []byte)) RunOption {
	return func(o *RunOptions) { o.onCapture = callback }
}

func OnPersonality(callback func(personality persona.Personality)) RunOption {
	return func(o *RunOptions) { o.onPersonality = callback }
}

func OnTranscript(callback func(text string)) RunOption {
	return func(o *RunOptions) { o.onTranscript = callback }
}

func OnResponse(callback func(text string)) RunOption {
	return func(o *RunOptions) { o.onResponse = callback }
}
