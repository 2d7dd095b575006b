package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amielabs/amie-core/core/devicelink"
	"github.com/amielabs/amie-core/internal/config"
)

var sayCmd = &cobra.Command{
	Use:   "say <text>...",
	Short: "Speak text through the speaker with synced mouth animation",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSay,
}

func init() {
	rootCmd.AddCommand(sayCmd)
}

func runSay(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	return withDevice(cmd, func(ctx context.Context, cfg config.Config, device *devicelink.Device) error {
		synthesizer, err := newSynthesizer(cfg)
		if err != nil {
			return err
		}
		mp3, err := synthesizer.Synthesize(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to synthesize speech: %w", err)
		}

		server, err := startClipServer(ctx, cfg)
		if err != nil {
			return err
		}
		name, err := server.Store(ctx, mp3, "mp3")
		if err != nil {
			return fmt.Errorf("failed to store clip: %w", err)
		}
		clipURL, err := server.URL(name)
		if err != nil {
			return fmt.Errorf("failed to build clip url: %w", err)
		}

		player := newPlayer(cfg, newSpeaker(cfg), device)
		handle, err := player.Play(ctx, clipURL, mp3)
		if err != nil {
			return fmt.Errorf("failed to start playback: %w", err)
		}
		return handle.Await()
	})
}
