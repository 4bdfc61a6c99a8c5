package configloader

import (
	"fmt"
	"net"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/yaklabco/mdsync/pkg/config"
)

// Zoom bounds accepted by validation.
const (
	minZoom = 0.25
	maxZoom = 5
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "render.style").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues such as an unknown highlighting style.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// knownFlavors lists valid flavor values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[config.Flavor]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Flavor != "" && !knownFlavors[cfg.Flavor] {
		result.fail("flavor", cfg.Flavor, "invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor)
	}

	if cfg.Zoom != 0 && (cfg.Zoom < minZoom || cfg.Zoom > maxZoom) {
		result.fail("zoom", cfg.Zoom, "zoom must be between %g and %g", float64(minZoom), float64(maxZoom))
	}

	if cfg.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
			result.fail("server.addr", cfg.Server.Addr, "invalid listen address: %v", err)
		}
	}

	if cfg.Watch.Debounce < 0 {
		result.fail("watch.debounce", cfg.Watch.Debounce, "debounce must be >= 0")
	}

	if cfg.Render.MaxBytes < 0 {
		result.fail("render.max_bytes", cfg.Render.MaxBytes, "max_bytes must be >= 0 (0 means unlimited)")
	}

	if cfg.Render.Style != "" {
		if _, ok := styles.Registry[strings.ToLower(cfg.Render.Style)]; !ok {
			result.warn("render.style", cfg.Render.Style, "unknown style %q; the default style will be used", cfg.Render.Style)
		}
	}

	if config.Bool(cfg.Render.UnsafeHTML) && config.Bool(cfg.Render.Sanitize) {
		result.warn("render.unsafe_html", true, "raw HTML is passed to the sanitizer, which removes disallowed elements")
	}

	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	validateIgnorePatterns(cfg, result)

	return result
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		// path.Match returns an error only for malformed patterns
		if _, err := path.Match(pattern, ""); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
