package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdsync/internal/logging"
	"github.com/yaklabco/mdsync/internal/ui/pretty"
	"github.com/yaklabco/mdsync/pkg/config"
)

type resolveFlags struct {
	flavor string
}

func newResolveCommand() *cobra.Command {
	flags := &resolveFlags{}

	cmd := &cobra.Command{
		Use:   "resolve FILE LINE",
		Short: "Resolve a source line to the block the preview scrolls to",
		Long: `Resolve an editor line against the block index of a Markdown file and
print the line the preview would scroll to, with its anchor id.

Lines in the first three rows resolve to the top of the document. A line past
the last block has no target.

Examples:
  mdsync resolve README.md 42`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.flavor, "flavor", string(config.FlavorGFM), "Markdown flavor: commonmark, gfm")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string, flags *resolveFlags) error {
	path := args[0]
	line, err := strconv.Atoi(args[1])
	if err != nil || line < 1 {
		return usageError(fmt.Errorf("invalid line %q: must be a positive integer", args[1]))
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

	resolved := idx.Resolve(line)
	logging.FromContext(commandContext(cmd)).Debug("resolved line",
		logging.FieldPath, path,
		logging.FieldLine, line,
		logging.FieldResolvedLine, resolved,
	)

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	fmt.Fprint(out, styles.FormatResolution(path, line, resolved))

	return nil
}
