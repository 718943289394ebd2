package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for pbar
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pbar",
		Short: "Terminal progress bar with log capture",
		Long: `pbar draws an in-place progress bar on the terminal and holds back
log output while the bar is running, printing it below the finished bar.

Settings are read from .pbar/config.yaml if present.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewDemoCommand())
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
