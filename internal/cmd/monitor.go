package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amielabs/amie-core/core/devicelink"
	"github.com/amielabs/amie-core/internal/config"
	"github.com/amielabs/amie-core/internal/tui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch device events live",
	Long:  `Monitor shows touch and button events from the device as they arrive.`,
	RunE:  runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	return withDevice(cmd, func(ctx context.Context, _ config.Config, device *devicelink.Device) error {
		return tui.Run(ctx, device)
	})
}
