package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/mdsync/internal/logging"
	"github.com/yaklabco/mdsync/pkg/config"
	"github.com/yaklabco/mdsync/pkg/fsutil"
	"github.com/yaklabco/mdsync/pkg/preview"
	"github.com/yaklabco/mdsync/pkg/scrollsync"
	"github.com/yaklabco/mdsync/pkg/watch"
)

// previewShutdownTimeout bounds how long browsers get to disconnect on exit.
const previewShutdownTimeout = 5 * time.Second

type previewFlags struct {
	addr     string
	lineSync bool
	zoom     float64
	poll     bool
	debounce time.Duration
	stdin    bool
}

func newPreviewCommand() *cobra.Command {
	flags := &previewFlags{}

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Serve a live preview that follows the editor",
		Long:  previewLongDescription,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args[0], flags)
		},
	}

	bindPreviewFlags(cmd, flags)

	return cmd
}

func bindPreviewFlags(cmd *cobra.Command, flags *previewFlags) {
	cmd.Flags().StringVar(&flags.addr, "addr", config.DefaultAddr, "listen address for the preview server")
	cmd.Flags().BoolVar(&flags.lineSync, "line-sync", true, "scroll the preview to the editor line")
	cmd.Flags().Float64Var(&flags.zoom, "zoom", 0, "zoom factor applied after each load (0 = browser default)")
	cmd.Flags().BoolVar(&flags.poll, "poll", false, "poll the file instead of using change notifications")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", config.DefaultDebounce, "quiet period before a changed file is re-read")
	cmd.Flags().BoolVar(&flags.stdin, "stdin", false, "read editor cursor lines from standard input, one per line")
}

const previewLongDescription = `Serve a live HTML preview of a Markdown file.

The file is re-rendered whenever it changes on disk. Open the printed URL in a
browser; the page updates in place.

Editors report the cursor line with POST /api/position {"line": N}, or by
writing line numbers to standard input with --stdin. With line sync on, the
preview scrolls to the block nearest that line. With line sync off, the
preview keeps the reader's own scroll position across re-renders. Toggle it
at runtime with POST /api/sync {"line_sync": false}.

Examples:
  mdsync preview README.md
  mdsync preview README.md --addr 127.0.0.1:8080 --zoom 1.25
  mdsync preview notes.md --line-sync=false
  my-editor-plugin | mdsync preview notes.md --stdin`

func runPreview(cmd *cobra.Command, path string, flags *previewFlags) error {
	cfg, err := loadConfig(cmd, previewConfig(cmd, flags))
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if !fsutil.IsRegularFile(absPath) {
		return fmt.Errorf("%w: %s", fsutil.ErrNotFound, path)
	}

	logger := logging.NewInteractive()
	logger.SetLevel(logging.FromContext(commandContext(cmd)).GetLevel())

	renderer := newRenderer(cfg)
	stylesheet, err := renderer.Stylesheet()
	if err != nil {
		return fmt.Errorf("build stylesheet: %w", err)
	}

	srv := preview.New(preview.Config{
		Addr:       cfg.Server.Addr,
		Path:       absPath,
		Parser:     newParser(cfg),
		Renderer:   renderer,
		Stylesheet: stylesheet,
		LineSync:   config.Bool(cfg.LineSync),
		Zoom:       cfg.Zoom,
		MaxBody:    int64(cfg.Render.MaxBytes),
		Hooks:      previewHooks(logger),
	})

	watchOpts := []watch.Option{
		watch.WithDebounce(cfg.Watch.Debounce),
		watch.WithErrorHandler(func(err error) {
			logger.Warn("watch error", logging.FieldPath, path, logging.FieldError, err)
		}),
	}
	if config.Bool(cfg.Watch.Poll) {
		watchOpts = append(watchOpts, watch.WithPolling(watch.DefaultPollInterval))
	}

	watcher, err := watch.New(absPath, watchOpts...)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(logging.WithLogger(commandContext(cmd), logger), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	if err := srv.Start(groupCtx); err != nil {
		return err
	}

	logger.Info("preview ready",
		logging.FieldURL, srv.URL(),
		logging.FieldPath, path,
		logging.FieldLineSync, srv.LineSync(),
	)

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), previewShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		return watcher.Run(groupCtx, func(content []byte) {
			if err := srv.UpdateContent(content); err != nil {
				logger.Debug("content dropped", logging.FieldError, err)
			}
		})
	})

	if flags.stdin {
		// Reads cannot be interrupted; the scanner goroutine ends with the process.
		go followLines(groupCtx, cmd.InOrStdin(), srv)
	}

	err = group.Wait()
	logger.Info("preview stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// previewConfig collects the flags that were set explicitly.
func previewConfig(cmd *cobra.Command, flags *previewFlags) *config.Config {
	cliCfg := &config.Config{}
	changed := cmd.Flags().Changed

	if changed("addr") {
		cliCfg.Server.Addr = flags.addr
	}
	if changed("line-sync") {
		cliCfg.LineSync = config.Ptr(flags.lineSync)
	}
	if changed("zoom") {
		cliCfg.Zoom = flags.zoom
	}
	if changed("poll") {
		cliCfg.Watch.Poll = config.Ptr(flags.poll)
	}
	if changed("debounce") {
		cliCfg.Watch.Debounce = flags.debounce
	}

	return cliCfg
}

func previewHooks(logger *log.Logger) preview.Hooks {
	return preview.Hooks{
		OnClient: func(id string, connected bool) {
			if connected {
				logger.Info("browser connected", logging.FieldClient, id)
				return
			}
			logger.Info("browser disconnected", logging.FieldClient, id)
		},
		OnContent: func(err error) {
			if err != nil {
				logger.Warn("render failed, keeping previous content", logging.FieldError, err)
				return
			}
			logger.Debug("content rendered")
		},
		OnPosition: func(line, resolved int) {
			if resolved == scrollsync.NoTarget {
				logger.Debug("no block for line", logging.FieldLine, line)
				return
			}
			logger.Debug("editor moved",
				logging.FieldLine, line,
				logging.FieldResolvedLine, resolved,
				logging.FieldAnchor, scrollsync.AnchorID(resolved),
			)
		},
		OnRestore: func(target scrollsync.RestoreTarget) {
			logger.Debug("restoring scroll position", logging.FieldTarget, target.String())
		},
	}
}

// positionUpdater is the part of the preview server followLines drives.
type positionUpdater interface {
	UpdatePosition(ctx context.Context, line int) (int, error)
	SetLineSync(enabled bool) bool
}

// followLines reads editor events from r until EOF or ctx is done. Each line is a
// cursor line number, or "sync on" / "sync off" to switch line sync.
func followLines(ctx context.Context, r io.Reader, srv positionUpdater) {
	logger := logging.FromContext(ctx)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "sync on", "sync off":
			enabled := text == "sync on"
			srv.SetLineSync(enabled)
			logger.Debug("line sync switched", logging.FieldLineSync, enabled)
			continue
		}

		line, err := strconv.Atoi(text)
		if err != nil || line < 1 {
			logger.Warn("ignoring editor input", "input", text)
			continue
		}

		if _, err := srv.UpdatePosition(ctx, line); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("position update failed", logging.FieldLine, line, logging.FieldError, err)
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.Warn("reading editor input failed", logging.FieldError, err)
	}
}
