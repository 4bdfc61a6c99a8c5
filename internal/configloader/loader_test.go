package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/yaklabco/mdsync/pkg/config"
)

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorGFM {
		t.Errorf("expected flavor %q, got %q", config.FlavorGFM, cfg.Flavor)
	}
	if !config.Bool(cfg.LineSync) {
		t.Error("expected line sync on by default")
	}
	if cfg.Server.Addr != config.DefaultAddr {
		t.Errorf("expected addr %q, got %q", config.DefaultAddr, cfg.Server.Addr)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no files loaded, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".mdsync.yml"), `
flavor: commonmark
line_sync: false
render:
  highlight: false
  style: monokai
`)

	result, err := Load(context.Background(), isolated(dir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorCommonMark {
		t.Errorf("expected flavor commonmark, got %q", cfg.Flavor)
	}
	if config.Bool(cfg.LineSync) {
		t.Error("expected project config to turn line sync off")
	}
	if config.Bool(cfg.Render.Highlight) {
		t.Error("expected project config to turn highlighting off")
	}
	if cfg.Render.Style != "monokai" {
		t.Errorf("expected style monokai, got %q", cfg.Render.Style)
	}
	if !config.Bool(cfg.Render.DetectLanguage) {
		t.Error("expected unset detect_language to keep its default")
	}
	if len(result.LoadedFrom) != 1 || result.LoadedFrom[0] != filepath.Join(dir, ".mdsync.yml") {
		t.Errorf("unexpected LoadedFrom %v", result.LoadedFrom)
	}
}

func TestLoad_PrecedenceExplicitOverProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".mdsync.yml"), "zoom: 1.5\nserver:\n  addr: localhost:9000\n")
	explicit := filepath.Join(dir, "custom.yml")
	writeConfig(t, explicit, "zoom: 2\n")

	opts := isolated(dir)
	opts.ExplicitPath = explicit
	opts.CLIConfig = &config.Config{Jobs: 3, Out: "site"}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Zoom != 2 {
		t.Errorf("expected explicit zoom 2, got %v", cfg.Zoom)
	}
	if cfg.Server.Addr != "localhost:9000" {
		t.Errorf("expected project addr to survive, got %q", cfg.Server.Addr)
	}
	if cfg.Jobs != 3 || cfg.Out != "site" {
		t.Errorf("expected CLI fields applied, got jobs=%d out=%q", cfg.Jobs, cfg.Out)
	}
	if len(result.LoadedFrom) != 2 {
		t.Errorf("expected 2 loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_EnvAndCLIPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".mdsync.yml"), "flavor: commonmark\nwatch:\n  debounce: 1s\n")

	t.Setenv("MDSYNC_FLAVOR", "gfm")
	t.Setenv("MDSYNC_WATCH_DEBOUNCE", "250ms")
	t.Setenv("MDSYNC_LINE_SYNC", "false")

	opts := isolated(dir)
	opts.IgnoreEnv = false
	opts.CLIConfig = &config.Config{LineSync: config.Ptr(true)}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorGFM {
		t.Errorf("expected env flavor gfm, got %q", cfg.Flavor)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected env debounce 250ms, got %v", cfg.Watch.Debounce)
	}
	if !config.Bool(cfg.LineSync) {
		t.Error("expected CLI line sync to override env")
	}
}

func TestLoad_UserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	writeConfig(t, filepath.Join(home, "mdsync", "config.yaml"), "render:\n  sanitize: true\n")

	opts := isolated(t.TempDir())
	opts.IgnoreUserConfig = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !config.Bool(result.Config.Render.Sanitize) {
		t.Error("expected user config to enable sanitize")
	}
	if result.Paths.User != filepath.Join(home, "mdsync", "config.yaml") {
		t.Errorf("unexpected user path %q", result.Paths.User)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"invalid flavor", "flavor: rst\n", "flavor"},
		{"zoom out of range", "zoom: 9\n", "zoom"},
		{"bad address", "server:\n  addr: nope\n", "server.addr"},
		{"negative max bytes", "render:\n  max_bytes: -1\n", "render.max_bytes"},
		{"bad glob", "ignore:\n  - \"[\"\n", "ignore[0]"},
		{"unknown key", "lines_sync: true\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, ".mdsync.yml")
			writeConfig(t, path, tt.content)

			_, err := Load(context.Background(), isolated(dir))
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, validationErr.Field)
			}
			if validationErr.FilePath != path {
				t.Errorf("expected file path %q, got %q", path, validationErr.FilePath)
			}
		})
	}
}

func TestLoad_Warnings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".mdsync.yml"), "render:\n  style: no-such-style\n  sanitize: true\n  unsafe_html: true\n")

	result, err := Load(context.Background(), isolated(dir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", result.Warnings)
	}
}

func TestFindProjectConfig(t *testing.T) {
	t.Parallel()

	t.Run("searches upward", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeConfig(t, filepath.Join(root, ".mdsync.yaml"), "flavor: gfm\n")
		nested := filepath.Join(root, "docs", "guide")
		if err := os.MkdirAll(nested, 0o755); err != nil {
			t.Fatal(err)
		}

		found, err := FindProjectConfig(context.Background(), nested)
		if err != nil {
			t.Fatalf("FindProjectConfig() error = %v", err)
		}
		if found != filepath.Join(root, ".mdsync.yaml") {
			t.Errorf("expected root config, got %q", found)
		}
	})

	t.Run("stops at VCS root", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeConfig(t, filepath.Join(root, ".mdsync.yml"), "flavor: gfm\n")
		repo := filepath.Join(root, "repo")
		if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
			t.Fatal(err)
		}

		found, err := FindProjectConfig(context.Background(), repo)
		if err != nil {
			t.Fatalf("FindProjectConfig() error = %v", err)
		}
		if found != "" {
			t.Errorf("expected search to stop at repo root, got %q", found)
		}
	})

	t.Run("prefers the first name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeConfig(t, filepath.Join(dir, "mdsync.yml"), "")
		writeConfig(t, filepath.Join(dir, ".mdsync.yml"), "")

		found, _ := FindProjectConfig(context.Background(), dir)
		if filepath.Base(found) != ProjectConfigName {
			t.Errorf("expected %s, got %q", ProjectConfigName, found)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := FindProjectConfig(ctx, t.TempDir()); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"MDSYNC_LINE_SYNC":        "maybe",
		"MDSYNC_ZOOM":             "big",
		"MDSYNC_WATCH_DEBOUNCE":   "soon",
		"MDSYNC_RENDER_MAX_BYTES": "lots",
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			err := LoadFromEnv(config.NewConfig())
			if err == nil || !strings.Contains(err.Error(), name) {
				t.Errorf("expected error naming %s, got %v", name, err)
			}
		})
	}
}

func TestLoadFromEnv_Slice(t *testing.T) {
	t.Setenv("MDSYNC_IGNORE", " drafts/** , ,vendor/** ")

	cfg := config.NewConfig()
	if err := LoadFromEnv(cfg); err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if strings.Join(cfg.Ignore, "|") != "drafts/**|vendor/**" {
		t.Errorf("unexpected ignore list %v", cfg.Ignore)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	override := &config.Config{
		Render: config.RenderConfig{Highlight: config.Ptr(false)},
		Ignore: []string{"a/**"},
	}

	merged := merge(base, override)
	if config.Bool(merged.Render.Highlight) {
		t.Error("expected override to turn highlighting off")
	}
	if !config.Bool(base.Render.Highlight) {
		t.Error("merge must not modify base")
	}
	if merged.Render.Style != config.DefaultStyle {
		t.Errorf("expected base style kept, got %q", merged.Render.Style)
	}

	override.Ignore[0] = "changed"
	if merged.Ignore[0] != "a/**" {
		t.Error("merged ignore list shares storage with override")
	}

	if merge(nil, override) != override || merge(base, nil) != base {
		t.Error("nil handling")
	}
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	if len(vars) != len(envMappings) {
		t.Fatalf("expected %d vars, got %d", len(envMappings), len(vars))
	}
	if !sort.SliceIsSorted(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name }) {
		t.Error("vars not sorted")
	}
	if vars[0].Name != "MDSYNC_FLAVOR" || vars[0].Field != "flavor" {
		t.Errorf("unexpected first var %+v", vars[0])
	}
	for _, v := range vars {
		if v.Description == "" {
			t.Errorf("%s has no description", v.Name)
		}
	}
}
