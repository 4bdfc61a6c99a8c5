package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdsync/internal/cli"
	"github.com/yaklabco/mdsync/pkg/config"
)

// testDocument has blocks at lines 1, 3, 5 (list and first item), 6 and 8.
const testDocument = `# Title

Intro text.

- one
- two

Closing.
`

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// pinnedConfig writes a config file so the run does not depend on project config.
func pinnedConfig(t *testing.T, content string) string {
	t.Helper()
	return writeFile(t, t.TempDir(), ".mdsync.yml", content)
}

// execute runs the CLI with args and returns the combined output and error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return stdout.String() + stderr.String(), err
}

func TestIntegration_Index(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, t.TempDir(), "doc.md", testDocument)
	cfgFile := pinnedConfig(t, "flavor: gfm\n")

	output, err := execute(t, "index", "--config", cfgFile, "--color", "never", doc)
	require.NoError(t, err)

	assert.Contains(t, output, "LINE")
	assert.Contains(t, output, "Heading")
	assert.Contains(t, output, "ListItem")
	assert.Contains(t, output, "pragma-line-1")
	assert.Contains(t, output, "pragma-line-8")
	assert.Contains(t, output, "blocks indexed")
	assert.NotContains(t, output, "resolved line")
}

func TestIntegration_IndexMarksResolvedLine(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, t.TempDir(), "doc.md", testDocument)
	cfgFile := pinnedConfig(t, "flavor: gfm\n")

	output, err := execute(t, "index", "--config", cfgFile, "--color", "never", "--line", "7", doc)
	require.NoError(t, err)

	assert.Contains(t, output, "* = resolved line 8")

	var marked []string
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, " * ") {
			marked = append(marked, line)
		}
	}
	require.Len(t, marked, 1)
	assert.Contains(t, marked[0], "pragma-line-8")
}

func TestIntegration_Resolve(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, t.TempDir(), "doc.md", testDocument)
	cfgFile := pinnedConfig(t, "flavor: gfm\n")

	tests := []struct {
		line string
		want string
	}{
		{line: "2", want: "-> top of document"},
		{line: "4", want: "-> line 5  (#pragma-line-5)"},
		{line: "6", want: "-> line 6  (#pragma-line-6)"},
		{line: "7", want: "-> line 8  (#pragma-line-8)"},
		{line: "40", want: "no target"},
	}

	for _, tt := range tests {
		t.Run("line "+tt.line, func(t *testing.T) {
			t.Parallel()

			output, err := execute(t, "resolve", "--config", cfgFile, "--color", "never", doc, tt.line)
			require.NoError(t, err)
			assert.Contains(t, output, doc+":"+tt.line)
			assert.Contains(t, output, tt.want)
		})
	}
}

func TestIntegration_ResolveErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.md", testDocument)
	cfgFile := pinnedConfig(t, "flavor: gfm\n")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "non-numeric line", args: []string{doc, "abc"}, code: cli.ExitInvalidUsage},
		{name: "zero line", args: []string{doc, "0"}, code: cli.ExitInvalidUsage},
		{name: "missing file", args: []string{filepath.Join(dir, "missing.md"), "3"}, code: cli.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"resolve", "--config", cfgFile}, tt.args...)
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, cli.ExitCode(err))
		})
	}
}

func TestIntegration_ConfigErrors(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, t.TempDir(), "doc.md", testDocument)

	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid flavor", content: "flavor: markdown-it\n"},
		{name: "unknown key", content: "colour: blue\n"},
		{name: "malformed yaml", content: "flavor: [gfm\n"},
		{name: "zoom out of range", content: "zoom: 12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfgFile := pinnedConfig(t, tt.content)
			_, err := execute(t, "index", "--config", cfgFile, doc)
			require.Error(t, err)
			assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
		})
	}
}

func TestIntegration_Render(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := t.TempDir()
	first := writeFile(t, src, "first.md", testDocument)
	writeFile(t, src, "nested/second.md", "Just a paragraph.\n")
	cfgFile := pinnedConfig(t, "flavor: gfm\n")

	output, err := execute(t, "render", "--config", cfgFile, "--color", "never", "--out", out, src)
	require.NoError(t, err)

	assert.Contains(t, output, "FILE")
	assert.Contains(t, output, "2 files rendered")

	page, err := os.ReadFile(filepath.Join(out, "first.html"))
	require.NoError(t, err, "pages for sources outside the working directory keep their base name")
	assert.Contains(t, string(page), `<title>Title</title>`)
	assert.Contains(t, string(page), `id="pragma-line-1"`)
	assert.Contains(t, string(page), `id="pragma-line-8"`)

	_, err = os.Stat(filepath.Join(out, "second.html"))
	require.NoError(t, err)

	// A second run finds identical pages.
	output, err = execute(t, "render", "--config", cfgFile, "--color", "never", "--format", "summary", "--out", out, first)
	require.NoError(t, err)
	assert.Equal(t, "1 file rendered (1 unchanged), 6 blocks indexed\n", output)

	output, err = execute(t, "render", "--config", cfgFile, "--color", "never", "--format", "summary",
		"--stats", "--out", out, first)
	require.NoError(t, err)
	assert.Contains(t, output, "Files discovered:  1")
	assert.Contains(t, output, "Export complete")
}

func TestIntegration_RenderFailureExitCode(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, src, "big.md", testDocument)
	cfgFile := pinnedConfig(t, "render:\n  max_bytes: 10\n")

	output, err := execute(t, "render", "--config", cfgFile, "--color", "never", "--format", "summary", "--out", t.TempDir(), src)
	require.ErrorIs(t, err, cli.ErrRenderFailed)
	assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))
	assert.Contains(t, output, "big.md")
	assert.Contains(t, output, "error")
	assert.Contains(t, output, "1 failed")
}

func TestIntegration_RenderInvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "render", "--format", "sarif", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, ".mdsync.yml")

	_, err := execute(t, "init", "--output", target)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	cfg, err := config.FromYAML(content)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	_, err = execute(t, "init", "--output", target)
	require.Error(t, err, "existing files are not overwritten without --force")

	_, err = execute(t, "init", "--output", target, "--full", "--force")
	require.NoError(t, err)

	full, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Greater(t, len(full), len(content))
	assert.Contains(t, string(full), "# Environment overrides")
	assert.Contains(t, string(full), "MDSYNC_LINE_SYNC")
	_, err = config.FromYAML(full)
	require.NoError(t, err)
}

func TestIntegration_InitJSON(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "mdsync.json")

	_, err := execute(t, "init", "--format", "json", "--output", target)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "{"))

	cfg, err := config.FromYAML(content)
	require.NoError(t, err, "JSON templates load through the YAML decoder")
	assert.Equal(t, config.FlavorGFM, cfg.Flavor)
}

func TestIntegration_InitInvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "init", "--format", "toml", "--output", filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestIntegration_PreviewMissingFile(t *testing.T) {
	t.Parallel()

	cfgFile := pinnedConfig(t, "flavor: gfm\n")

	_, err := execute(t, "preview", "--config", cfgFile, filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))
}

func TestIntegration_PreviewInvalidZoom(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, t.TempDir(), "doc.md", testDocument)
	cfgFile := pinnedConfig(t, "flavor: gfm\n")

	_, err := execute(t, "preview", "--config", cfgFile, "--zoom", "9", doc)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestIntegration_PreviewStopsOnCancel(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, t.TempDir(), "doc.md", testDocument)
	cfgFile := pinnedConfig(t, "flavor: gfm\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(300*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() {
		_, err := executeContext(t, ctx, "preview", "--config", cfgFile, "--addr", "127.0.0.1:0", doc)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("preview did not stop after cancellation")
	}
}
