// Package config loads the TOML configuration for the date device stack.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/amielabs/amie-core/core/audioserve"
	"github.com/amielabs/amie-core/core/devicelink"
	"github.com/amielabs/amie-core/core/playback"
	"github.com/amielabs/amie-core/core/servo"
)

type Config struct {
	Device   DeviceConfig   `toml:"device"`
	Speaker  SpeakerConfig  `toml:"speaker"`
	Clips    ClipsConfig    `toml:"clips"`
	Speech   SpeechConfig   `toml:"speech"`
	Servo    ServoConfig    `toml:"servo"`
	Envelope EnvelopeConfig `toml:"envelope"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

// DeviceConfig describes the display device link. Target is either a TCP
// host or a serial port path; paths starting with /dev/ or COM go serial.
type DeviceConfig struct {
	Target                string `toml:"target"`
	Port                  int    `toml:"port"`
	BaudRate              int    `toml:"baud_rate"`
	ResponseTimeoutMillis int    `toml:"response_timeout_ms"`
	ReadyTimeoutMillis    int    `toml:"ready_timeout_ms"`
	DecodeTimeoutMillis   int    `toml:"decode_timeout_ms"`
}

type SpeakerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClipsConfig describes the local HTTP server that hands synthesized clips
// to the speaker.
type ClipsConfig struct {
	Dir  string `toml:"dir"`
	Port int    `toml:"port"`
}

type SpeechConfig struct {
	Voice       string `toml:"voice"`
	VisionModel string `toml:"vision_model"`
	ChatModel   string `toml:"chat_model"`
}

type ServoConfig struct {
	Port     string `toml:"port"`
	BaudRate int    `toml:"baud_rate"`
}

// EnvelopeConfig tunes the mouth envelope extraction.
type EnvelopeConfig struct {
	FrameMillis      int     `toml:"frame_ms"`
	SmoothingAlpha   float64 `toml:"smoothing_alpha"`
	PowerCurve       float64 `toml:"power_curve"`
	SilenceThreshold float64 `toml:"silence_threshold"`
	DurationScale    float64 `toml:"duration_scale"`
}

type PipelineConfig struct {
	TouchAnywhere     bool `toml:"touch_anywhere"`
	MinClipMillis     int  `toml:"min_clip_ms"`
	BufferDelayMillis int  `toml:"buffer_delay_ms"`
}

// Load reads a TOML config file and fills in defaults for anything unset.
// A missing file is not an error; it yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Default() Config {
	return Config{
		Device: DeviceConfig{
			Port:                  devicelink.DefaultPort,
			BaudRate:              devicelink.DefaultBaudRate,
			ResponseTimeoutMillis: 5000,
			ReadyTimeoutMillis:    3000,
			DecodeTimeoutMillis:   10000,
		},
		Speaker: SpeakerConfig{
			Port: playback.DefaultPort,
		},
		Clips: ClipsConfig{
			Dir:  "clips",
			Port: audioserve.DefaultPort,
		},
		Servo: ServoConfig{
			BaudRate: servo.DefaultBaudRate,
		},
		Envelope: EnvelopeConfig{
			FrameMillis:      30,
			SmoothingAlpha:   0.35,
			PowerCurve:       0.6,
			SilenceThreshold: 0.02,
			DurationScale:    0.7,
		},
		Pipeline: PipelineConfig{
			MinClipMillis:     300,
			BufferDelayMillis: 400,
		},
	}
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Device.Target) == "" {
		return fmt.Errorf("device config missing target")
	}
	if cfg.Device.Port <= 0 || cfg.Device.Port > 65535 {
		return fmt.Errorf("device config port out of range: %d", cfg.Device.Port)
	}
	if cfg.Clips.Port <= 0 || cfg.Clips.Port > 65535 {
		return fmt.Errorf("clips config port out of range: %d", cfg.Clips.Port)
	}
	if cfg.Speaker.Port <= 0 || cfg.Speaker.Port > 65535 {
		return fmt.Errorf("speaker config port out of range: %d", cfg.Speaker.Port)
	}
	if cfg.Envelope.FrameMillis <= 0 {
		return fmt.Errorf("envelope config frame_ms must be positive")
	}
	if cfg.Envelope.SmoothingAlpha < 0 || cfg.Envelope.SmoothingAlpha >= 1 {
		return fmt.Errorf("envelope config smoothing_alpha out of range: %g", cfg.Envelope.SmoothingAlpha)
	}
	if cfg.Pipeline.MinClipMillis < 0 {
		return fmt.Errorf("pipeline config min_clip_ms must not be negative")
	}
	if cfg.Pipeline.BufferDelayMillis < 0 {
		return fmt.Errorf("pipeline config buffer_delay_ms must not be negative")
	}
	return nil
}
