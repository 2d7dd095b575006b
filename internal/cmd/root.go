package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amielabs/amie-core/core/devicelink"
	"github.com/amielabs/amie-core/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "amie",
	Short: "Drive the pocket date device",
	Long: `Amie talks to the round-display date device over TCP or serial.
It can poke individual device commands, speak text through the speaker
with synced mouth animation, or run the full date flow: stream frames,
generate a personality from the captured one, and hold a push-to-talk
conversation.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgFile      string
	deviceTarget string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "amie.toml", "config file")
	rootCmd.PersistentFlags().StringVarP(&deviceTarget, "target", "t", "", "device address, a TCP host or a serial port path (overrides config)")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	if deviceTarget != "" {
		cfg.Device.Target = deviceTarget
	}
	if cfg.Device.Target == "" {
		return config.Config{}, fmt.Errorf("no device target: pass --target or set device.target in %s", cfgFile)
	}
	return cfg, nil
}

func deviceOptions(cfg config.DeviceConfig) []devicelink.SessionOption {
	opts := []devicelink.SessionOption{
		devicelink.WithPort(cfg.Port),
		devicelink.WithBaudRate(cfg.BaudRate),
	}
	if cfg.ResponseTimeoutMillis > 0 {
		opts = append(opts, devicelink.WithResponseTimeout(time.Duration(cfg.ResponseTimeoutMillis)*time.Millisecond))
	}
	if cfg.ReadyTimeoutMillis > 0 {
		opts = append(opts, devicelink.WithReadyTimeout(time.Duration(cfg.ReadyTimeoutMillis)*time.Millisecond))
	}
	if cfg.DecodeTimeoutMillis > 0 {
		opts = append(opts, devicelink.WithDecodeTimeout(time.Duration(cfg.DecodeTimeoutMillis)*time.Millisecond))
	}
	return opts
}

// withDevice loads config, connects to the device, and runs fn with the
// connected facade, closing the session afterwards.
func withDevice(cmd *cobra.Command, fn func(ctx context.Context, cfg config.Config, device *devicelink.Device) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	session, err := devicelink.Connect(ctx, cfg.Device.Target, deviceOptions(cfg.Device)...)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Device.Target, err)
	}
	defer session.Close()
	return fn(ctx, cfg, devicelink.NewDevice(session))
}

// confirm turns a device reply into a command exit status.
func confirm(resp devicelink.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsTimeout() {
		return fmt.Errorf("device did not respond")
	}
	if resp.Status() != devicelink.StatusOK {
		return fmt.Errorf("device rejected the command: %v", resp)
	}
	return nil
}
