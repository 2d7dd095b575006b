package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	pipeline "github.com/amielabs/amie-core/core"
	"github.com/amielabs/amie-core/core/audio/miniaudio"
	"github.com/amielabs/amie-core/core/devicelink"
	"github.com/amielabs/amie-core/core/persona"
	"github.com/amielabs/amie-core/core/persona/groq"
	"github.com/amielabs/amie-core/core/servo"
	sttdeepgram "github.com/amielabs/amie-core/core/speechtotext/deepgram"
	"github.com/amielabs/amie-core/internal/config"
)

var (
	converseFramesDir     string
	converseFrameInterval time.Duration
)

var converseCmd = &cobra.Command{
	Use:   "converse",
	Short: "Run the full date flow",
	Long: `Converse streams JPEG frames to the display until the on-screen date
button or the physical button is pressed, generates a personality from the
captured frame, speaks the opener, and then holds a push-to-talk
conversation. Hold the button to talk, release to hear the reply.`,
	RunE: runConverse,
}

func init() {
	converseCmd.Flags().StringVar(&converseFramesDir, "frames", "frames", "directory of JPEG frames to stream")
	converseCmd.Flags().DurationVar(&converseFrameInterval, "frame-interval", 100*time.Millisecond, "delay between streamed frames")
	rootCmd.AddCommand(converseCmd)
}

func runConverse(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	frames, err := newDirFrameSource(converseFramesDir, converseFrameInterval)
	if err != nil {
		return err
	}

	session, err := devicelink.Connect(ctx, cfg.Device.Target, deviceOptions(cfg.Device)...)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Device.Target, err)
	}
	defer session.Close()
	device := devicelink.NewDevice(session)

	server, err := startClipServer(ctx, cfg)
	if err != nil {
		return err
	}

	synthesizer, err := newSynthesizer(cfg)
	if err != nil {
		return err
	}

	transcription, err := sttdeepgram.NewTranscriptionClient()
	if err != nil {
		return err
	}

	capture, err := miniaudio.NewClient()
	if err != nil {
		return fmt.Errorf("failed to open audio capture: %w", err)
	}
	defer capture.Close()

	brain, err := groq.NewClient(groqOptions(cfg)...)
	if err != nil {
		return err
	}

	opts := []pipeline.PipelineOption{
		pipeline.WithDevice(device),
		pipeline.WithFrameSource(frames),
		pipeline.WithPersonaGenerator(brain),
		pipeline.WithResponder(brain),
		pipeline.WithSynthesizer(synthesizer),
		pipeline.WithTranscriber(pipeline.NewClipTranscriber(transcription)),
		pipeline.WithAudioInput(capture),
		pipeline.WithClipStore(server),
		pipeline.WithPlayer(newPlayer(cfg, newSpeaker(cfg), device)),
	}
	if cfg.Servo.Port != "" {
		link, err := servo.Open(cfg.Servo.Port, servo.WithBaudRate(cfg.Servo.BaudRate))
		if err != nil {
			return fmt.Errorf("failed to open servo: %w", err)
		}
		defer link.Close()
		opts = append(opts, pipeline.WithServo(link))
	}
	if cfg.Pipeline.TouchAnywhere {
		opts = append(opts, pipeline.WithTouchAnywhere())
	}
	if cfg.Pipeline.MinClipMillis > 0 {
		opts = append(opts, pipeline.WithMinClipDuration(time.Duration(cfg.Pipeline.MinClipMillis)*time.Millisecond))
	}

	return pipeline.New(opts...).Run(ctx,
		pipeline.OnPersonality(func(p persona.Personality) {
			fmt.Printf("matched with %s (%s), interest %d/10\n", p.Name, p.Vibe, p.Interest)
		}),
		pipeline.OnTranscript(func(text string) { fmt.Println("you: ", text) }),
		pipeline.OnResponse(func(text string) { fmt.Println("amie:", text) }),
	)
}

func groqOptions(cfg config.Config) []groq.ClientOption {
	var opts []groq.ClientOption
	if cfg.Speech.VisionModel != "" {
		opts = append(opts, groq.WithVisionModel(cfg.Speech.VisionModel))
	}
	if cfg.Speech.ChatModel != "" {
		opts = append(opts, groq.WithChatModel(cfg.Speech.ChatModel))
	}
	return opts
}

// dirFrameSource cycles through the JPEG files of a directory at a fixed
// rate, standing in for a live camera.
type dirFrameSource struct {
	files    []string
	interval time.Duration
	next     int
}

func newDirFrameSource(dir string, interval time.Duration) (*dirFrameSource, error) {
	var files []string
	for _, pattern := range []string{"*.jpg", "*.jpeg"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list frames: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JPEG frames in %s", dir)
	}
	sort.Strings(files)
	return &dirFrameSource{files: files, interval: interval}, nil
}

func (s *dirFrameSource) NextFrame(ctx context.Context) ([]byte, error) {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	data, err := os.ReadFile(s.files[s.next%len(s.files)])
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	s.next++
	return data, nil
}
