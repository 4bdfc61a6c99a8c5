package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdsync/internal/configloader"
	"github.com/yaklabco/mdsync/internal/logging"
	"github.com/yaklabco/mdsync/pkg/config"
	goldmarkparser "github.com/yaklabco/mdsync/pkg/parser/goldmark"
	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

// commandContext returns the command's context, or Background when executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig resolves the layered configuration. flags holds the values set on the
// command line and takes precedence over every other layer.
func loadConfig(cmd *cobra.Command, flags *config.Config) (*config.Config, error) {
	logger := logging.FromContext(commandContext(cmd))

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    flags,
	})
	if err != nil {
		return nil, configError(errors.Join(errors.New("failed to load configuration"), err))
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldPaths, loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logger.Debug("configuration loaded",
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldLineSync, config.Bool(cfg.LineSync),
		logging.FieldAddr, cfg.Server.Addr,
		logging.FieldJobs, cfg.Jobs,
	)

	return cfg, nil
}

// newParser creates the parser for cfg.
func newParser(cfg *config.Config) *goldmarkparser.Parser {
	return goldmarkparser.New(string(cfg.Flavor), goldmarkparser.WithMaxBytes(cfg.Render.MaxBytes))
}

// newRenderer creates the HTML renderer for cfg.
func newRenderer(cfg *config.Config) *goldmarkparser.Renderer {
	return goldmarkparser.NewRenderer(string(cfg.Flavor), goldmarkparser.RenderOptions{
		Highlight:      config.Bool(cfg.Render.Highlight),
		Style:          cfg.Render.Style,
		DetectLanguage: config.Bool(cfg.Render.DetectLanguage),
		Sanitize:       config.Bool(cfg.Render.Sanitize),
		UnsafeHTML:     config.Bool(cfg.Render.UnsafeHTML),
	})
}

// buildIndex parses the file at path and returns its block index.
func buildIndex(ctx context.Context, cfg *config.Config, path string) (*scrollsync.Index, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	snapshot, err := newParser(cfg).Parse(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", scrollsync.ErrParse, path, err)
	}

	return scrollsync.BuildIndex(snapshot.Root), nil
}

// colorMode returns the --color flag value.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}
