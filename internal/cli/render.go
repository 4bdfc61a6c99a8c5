package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdsync/internal/logging"
	"github.com/yaklabco/mdsync/internal/ui/pretty"
	"github.com/yaklabco/mdsync/pkg/config"
	"github.com/yaklabco/mdsync/pkg/runner"
)

// Render output formats.
const (
	renderFormatTable   = "table"
	renderFormatSummary = "summary"
)

type renderFlags struct {
	out            string
	jobs           int
	ignore         []string
	include        []string
	flavor         string
	format         string
	followSymlinks bool
	stats          bool
}

func newRenderCommand() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [paths...]",
		Short: "Export Markdown files as standalone HTML pages",
		Long:  renderLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output directory (default: next to each source file)")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "only render paths matching these globs")
	cmd.Flags().StringVar(&flags.flavor, "flavor", string(config.FlavorGFM), "Markdown flavor: commonmark, gfm")
	cmd.Flags().StringVar(&flags.format, "format", renderFormatTable, "output format: table, summary")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "print a detailed summary block after the results")

	return cmd
}

const renderLongDescription = `Export Markdown files as standalone HTML pages.

Every block in a page carries the same line anchors the live preview uses, so
exported pages can be opened at a source line with #pragma-line-N.

By default, renders all .md and .markdown files in the current directory and
subdirectories, writing each page next to its source.

Examples:
  mdsync render                    # Render current directory
  mdsync render docs/ --out site/  # Render docs into site/
  mdsync render README.md          # Render a single file
  mdsync render --ignore 'vendor/**' --jobs 4`

func runRender(cmd *cobra.Command, args []string, flags *renderFlags) error {
	logger := logging.FromContext(commandContext(cmd))

	if flags.format != renderFormatTable && flags.format != renderFormatSummary {
		return usageError(fmt.Errorf("invalid format %q: must be %s or %s",
			flags.format, renderFormatTable, renderFormatSummary))
	}

	// Only set values that were explicitly provided via CLI flags.
	cliCfg := &config.Config{
		Jobs:   flags.jobs,
		Out:    flags.out,
		Ignore: flags.ignore,
	}
	if cmd.Flags().Changed("flavor") {
		cliCfg.Flavor = config.Flavor(flags.flavor)
	}

	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	renderer := newRenderer(cfg)
	stylesheet, err := renderer.Stylesheet()
	if err != nil {
		return fmt.Errorf("build stylesheet: %w", err)
	}

	exporter := runner.New(newParser(cfg), renderer, stylesheet)

	runOpts := runner.Options{
		Paths:          args,
		WorkingDir:     workDir,
		Extensions:     runner.DefaultExtensions(),
		IncludeGlobs:   flags.include,
		ExcludeGlobs:   cfg.Ignore,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           cfg.Jobs,
		OutDir:         cfg.Out,
	}

	logger.Debug("starting render run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldOutput, runOpts.OutDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	start := time.Now()
	result, err := exporter.Run(commandContext(cmd), runOpts)
	if err != nil {
		return errors.Join(errors.New("render run failed"), err)
	}

	logger.Debug("render run finished",
		logging.FieldDuration, time.Since(start),
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesRendered, result.Stats.FilesRendered,
		logging.FieldFilesUnchanged, result.Stats.FilesUnchanged,
		logging.FieldFilesErrored, result.Stats.FilesErrored,
	)

	relativize(result, workDir)
	reportRender(cmd.OutOrStdout(), colorMode(cmd), flags, result)

	if ExitCodeFromResult(result) != ExitSuccess {
		return ErrRenderFailed
	}
	return nil
}

func reportRender(out io.Writer, mode string, flags *renderFlags, result *runner.Result) {
	colorEnabled := pretty.IsColorEnabled(mode, out)
	styles := pretty.NewStyles(colorEnabled)

	if flags.format == renderFormatTable {
		formatter := pretty.NewTableFormatter(styles, colorEnabled, pretty.TerminalWidth(out))
		fmt.Fprint(out, formatter.FormatRenderTable(result))
	} else {
		for _, outcome := range result.Files {
			if outcome.Error != nil {
				fmt.Fprint(out, styles.FormatFileError(outcome.Path, outcome.Error))
			}
		}
	}

	fmt.Fprint(out, styles.FormatSummaryOneLine(result.Stats))
	if flags.stats {
		fmt.Fprint(out, styles.FormatSummary(result.Stats))
	}
}

// relativize rewrites result paths relative to workDir where possible.
func relativize(result *runner.Result, workDir string) {
	for i := range result.Files {
		result.Files[i].Path = relativePath(workDir, result.Files[i].Path)
		if result.Files[i].Output != "" {
			result.Files[i].Output = relativePath(workDir, result.Files[i].Output)
		}
	}
}

func relativePath(workDir, path string) string {
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
