package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdsync/internal/logging"
	"github.com/yaklabco/mdsync/internal/ui/pretty"
	"github.com/yaklabco/mdsync/pkg/config"
	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

type indexFlags struct {
	flavor string
	line   int
}

func newIndexCommand() *cobra.Command {
	flags := &indexFlags{}

	cmd := &cobra.Command{
		Use:   "index FILE",
		Short: "Show the block index of a Markdown file",
		Long: `Print every anchored block of a Markdown file with its source line,
kind, nesting depth, and anchor id.

With --line, the block the line resolves to is marked.

Examples:
  mdsync index README.md
  mdsync index README.md --line 42`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.flavor, "flavor", string(config.FlavorGFM), "Markdown flavor: commonmark, gfm")
	cmd.Flags().IntVar(&flags.line, "line", 0, "mark the block this source line resolves to")

	return cmd
}

func runIndex(cmd *cobra.Command, path string, flags *indexFlags) error {
	if flags.line < 0 {
		return usageError(fmt.Errorf("invalid line %d: must be positive", flags.line))
	}

	cliCfg := &config.Config{}
	if cmd.Flags().Changed("flavor") {
		cliCfg.Flavor = config.Flavor(flags.flavor)
	}

	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	idx, err := buildIndex(commandContext(cmd), cfg, path)
	if err != nil {
		return err
	}

	target := scrollsync.NoTarget
	if flags.line > 0 {
		target = idx.Resolve(flags.line)
	}

	logging.FromContext(commandContext(cmd)).Debug("built block index",
		logging.FieldPath, path,
		logging.FieldBlocks, idx.Len(),
		logging.FieldTarget, target,
	)

	out := cmd.OutOrStdout()
	colorEnabled := pretty.IsColorEnabled(colorMode(cmd), out)
	styles := pretty.NewStyles(colorEnabled)

	if idx.Len() == 0 {
		fmt.Fprintln(out, styles.FormatFileHeader(path, 0)+styles.Dim.Render(": no blocks"))
		return nil
	}

	formatter := pretty.NewTableFormatter(styles, colorEnabled, pretty.TerminalWidth(out))
	fmt.Fprintln(out, styles.FormatFileHeader(path, idx.Len()))
	fmt.Fprint(out, formatter.FormatIndex(idx, target))

	return nil
}
