// Package config defines core configuration types for mdsync.
// These types are pure data structures; loading and layering live in internal/configloader.
package config

import "time"

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Defaults applied by NewConfig.
const (
	DefaultAddr     = "127.0.0.1:7474"
	DefaultDebounce = 100 * time.Millisecond
	DefaultStyle    = "github"
	DefaultMaxBytes = 8 << 20
)

// ServerConfig configures the preview server.
type ServerConfig struct {
	// Addr is the TCP listen address.
	Addr string `yaml:"addr,omitempty"`
}

// WatchConfig configures file watching during preview.
type WatchConfig struct {
	// Debounce is the quiet period after a change before the file is re-read.
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// Poll forces stat polling instead of file notifications.
	Poll *bool `yaml:"poll,omitempty"`
}

// RenderConfig controls HTML output.
type RenderConfig struct {
	// Highlight enables syntax highlighting of code blocks.
	Highlight *bool `yaml:"highlight,omitempty"`

	// Style is the highlighting style name.
	Style string `yaml:"style,omitempty"`

	// DetectLanguage guesses the language of unlabeled code blocks.
	DetectLanguage *bool `yaml:"detect_language,omitempty"`

	// Sanitize filters the rendered HTML through an allowlist policy.
	Sanitize *bool `yaml:"sanitize,omitempty"`

	// UnsafeHTML passes raw HTML in the source through to the output.
	UnsafeHTML *bool `yaml:"unsafe_html,omitempty"`

	// MaxBytes rejects larger documents. 0 disables the limit.
	MaxBytes int `yaml:"max_bytes,omitempty"`
}

// Config is the root configuration structure for mdsync.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor,omitempty"`

	// LineSync starts the preview in line-synchronized mode.
	LineSync *bool `yaml:"line_sync,omitempty"`

	// Zoom is the zoom factor applied after each load. 0 leaves the browser default.
	Zoom float64 `yaml:"zoom,omitempty"`

	Server ServerConfig `yaml:"server,omitempty"`
	Watch  WatchConfig  `yaml:"watch,omitempty"`
	Render RenderConfig `yaml:"render,omitempty"`

	// Ignore contains glob patterns for files to skip during batch rendering.
	Ignore []string `yaml:"ignore,omitempty"`

	// CLI-level options (not persisted to config files).

	// Jobs specifies the number of parallel render workers.
	Jobs int `yaml:"-"`

	// Out is the output directory for batch rendering.
	Out string `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:   FlavorGFM,
		LineSync: Ptr(true),
		Server:   ServerConfig{Addr: DefaultAddr},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
			Poll:     Ptr(false),
		},
		Render: RenderConfig{
			Highlight:      Ptr(true),
			Style:          DefaultStyle,
			DetectLanguage: Ptr(true),
			Sanitize:       Ptr(false),
			UnsafeHTML:     Ptr(false),
			MaxBytes:       DefaultMaxBytes,
		},
		Jobs: 0, // 0 means use NumCPU
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Bool dereferences an optional flag, treating nil as false.
func Bool(p *bool) bool {
	return p != nil && *p
}
