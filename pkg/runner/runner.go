package runner

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/mdsync/pkg/fsutil"
	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

// Runner exports Markdown files as standalone HTML pages.
type Runner struct {
	Parser     scrollsync.Parser
	Renderer   scrollsync.Renderer
	Stylesheet []byte
}

// New creates a Runner. stylesheet is embedded in every page and may be nil.
func New(parser scrollsync.Parser, renderer scrollsync.Renderer, stylesheet []byte) *Runner {
	return &Runner{Parser: parser, Renderer: renderer, Stylesheet: stylesheet}
}

// Run discovers files under opts.Paths and exports them concurrently.
// Per-file failures are recorded in the result; only discovery errors and cancellation
// are returned as errors.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	// Each worker owns one slot, so outcomes stay in discovery order.
	outcomes := make([]FileOutcome, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			outcomes[i] = r.ExportFile(groupCtx, path, OutputPath(workDir, opts.OutDir, path))
			return nil
		})
	}
	_ = group.Wait()

	for _, outcome := range outcomes {
		if outcome.Path != "" {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}

	return result, nil
}

// ExportFile renders one source file to output.
func (r *Runner) ExportFile(ctx context.Context, path, output string) FileOutcome {
	outcome := FileOutcome{Path: path, Output: output}

	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	snapshot, err := r.Parser.Parse(ctx, path, content)
	if err != nil {
		outcome.Error = fmt.Errorf("%w: %s: %w", scrollsync.ErrParse, path, err)
		return outcome
	}

	body, err := r.Renderer.Render(ctx, snapshot)
	if err != nil {
		outcome.Error = fmt.Errorf("%w: %s: %w", scrollsync.ErrRender, path, err)
		return outcome
	}

	page, err := RenderPage(PageTitle(snapshot), r.Stylesheet, body)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	written, err := fsutil.WriteIfChanged(ctx, output, page, fsutil.DefaultFileMode)
	if err != nil {
		outcome.Error = fmt.Errorf("write %s: %w", output, err)
		return outcome
	}

	outcome.Written = written
	outcome.Blocks = scrollsync.BuildIndex(snapshot.Root).Len()
	return outcome
}
