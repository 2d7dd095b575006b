package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amielabs/amie-core/core/devicelink"
	"github.com/amielabs/amie-core/internal/config"
)

var faceCmd = &cobra.Command{
	Use:   "face on|off",
	Short: "Switch the animated face on or off",
	Args:  cobra.ExactArgs(1),
	RunE:  runFace,
}

var clearCmd = &cobra.Command{
	Use:   "clear <#RRGGBB>",
	Short: "Fill the screen with a solid color",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

var toneCmd = &cobra.Command{
	Use:   "tone <freq> <ms>",
	Short: "Play a buzzer tone",
	Args:  cobra.ExactArgs(2),
	RunE:  runTone,
}

var imageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Show a JPEG on the display",
	Args:  cobra.ExactArgs(1),
	RunE:  runImage,
}

func init() {
	rootCmd.AddCommand(faceCmd, clearCmd, toneCmd, imageCmd)
}

func runFace(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}
	return withDevice(cmd, func(ctx context.Context, _ config.Config, device *devicelink.Device) error {
		return confirm(device.Face(ctx, on))
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	color := args[0]
	if len(color) != 7 || color[0] != '#' {
		return fmt.Errorf("expected a #RRGGBB color, got %q", color)
	}
	return withDevice(cmd, func(ctx context.Context, _ config.Config, device *devicelink.Device) error {
		return confirm(device.Clear(ctx, color))
	})
}

func runTone(cmd *cobra.Command, args []string) error {
	freq, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid frequency %q: %w", args[0], err)
	}
	dur, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", args[1], err)
	}
	return withDevice(cmd, func(ctx context.Context, _ config.Config, device *devicelink.Device) error {
		return confirm(device.Tone(ctx, freq, dur))
	})
}

func runImage(cmd *cobra.Command, args []string) error {
	jpeg, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	return withDevice(cmd, func(ctx context.Context, _ config.Config, device *devicelink.Device) error {
		return confirm(device.ShowImage(ctx, jpeg))
	})
}
