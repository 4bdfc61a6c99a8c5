// Package cli provides the Cobra command structure for mdsync.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdsync/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root mdsync command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "mdsync",
		Short: "Live Markdown preview that follows your editor",
		Long: `mdsync renders Markdown to HTML and keeps a browser preview scrolled to the
block under your editor's cursor.

Every rendered block carries an anchor for the source line it starts on. When
the editor reports a cursor line, mdsync resolves it to the nearest block and
scrolls the preview there. When you scroll the preview yourself, mdsync
remembers the position and restores it after the next re-render.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			cmd.SetContext(logging.WithLogger(commandContext(cmd), logging.Default()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newPreviewCommand())
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newIndexCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}

// exactArgs is cobra.ExactArgs with failures reported as usage errors.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usageError(cobra.ExactArgs(n)(cmd, args))
	}
}
