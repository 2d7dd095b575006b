package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "amie.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[device]
target = "192.168.1.42"

[speech]
voice = "aura-2-luna-en"

[pipeline]
touch_anywhere = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Device.Target != "192.168.1.42" {
		t.Fatalf("expected device target from file, got %q", cfg.Device.Target)
	}
	if cfg.Device.Port != 7777 {
		t.Fatalf("expected default device port 7777, got %d", cfg.Device.Port)
	}
	if cfg.Device.BaudRate != 921600 {
		t.Fatalf("expected default baud rate 921600, got %d", cfg.Device.BaudRate)
	}
	if cfg.Speaker.Port != 8082 {
		t.Fatalf("expected default speaker port 8082, got %d", cfg.Speaker.Port)
	}
	if cfg.Clips.Port != 8080 {
		t.Fatalf("expected default clips port 8080, got %d", cfg.Clips.Port)
	}
	if cfg.Speech.Voice != "aura-2-luna-en" {
		t.Fatalf("expected voice from file, got %q", cfg.Speech.Voice)
	}
	if !cfg.Pipeline.TouchAnywhere {
		t.Fatal("expected touch_anywhere from file")
	}
	if cfg.Pipeline.MinClipMillis != 300 || cfg.Pipeline.BufferDelayMillis != 400 {
		t.Fatalf("expected default pipeline timings, got %+v", cfg.Pipeline)
	}
	if cfg.Envelope.FrameMillis != 30 || cfg.Envelope.SmoothingAlpha != 0.35 {
		t.Fatalf("expected default envelope tuning, got %+v", cfg.Envelope)
	}
	if cfg.Device.ResponseTimeoutMillis != 5000 || cfg.Device.DecodeTimeoutMillis != 10000 {
		t.Fatalf("expected default device timeouts, got %+v", cfg.Device)
	}
}

func TestLoadRejectsBadSmoothingAlpha(t *testing.T) {
	path := writeConfig(t, `
[device]
target = "192.168.1.42"

[envelope]
smoothing_alpha = 1.5
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for smoothing_alpha outside [0,1)")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected defaults for a missing file, got %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := writeConfig(t, `
[device]
target = "192.168.1.42"
port = 700000
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an out-of-range port")
	}
}

func TestLoadRejectsMissingTarget(t *testing.T) {
	path := writeConfig(t, `
[speaker]
port = 8082
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a config without a device target")
	}
}
