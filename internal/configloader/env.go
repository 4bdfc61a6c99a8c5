package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/mdsync/pkg/config"
)

// envVarPrefix is the prefix for all mdsync environment variables.
const envVarPrefix = "MDSYNC_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeFloat
	envTypeDuration
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR":                 {"flavor", envTypeString, "Markdown flavor: commonmark or gfm"},
	"LINE_SYNC":              {"line_sync", envTypeBool, "Follow the editor cursor: true or false"},
	"ZOOM":                   {"zoom", envTypeFloat, "Zoom factor applied after each load"},
	"SERVER_ADDR":            {"server.addr", envTypeString, "Preview server listen address"},
	"WATCH_DEBOUNCE":         {"watch.debounce", envTypeDuration, "Quiet period before re-reading a changed file, e.g. 150ms"},
	"WATCH_POLL":             {"watch.poll", envTypeBool, "Poll instead of using file notifications: true or false"},
	"RENDER_HIGHLIGHT":       {"render.highlight", envTypeBool, "Highlight code blocks: true or false"},
	"RENDER_STYLE":           {"render.style", envTypeString, "Highlighting style name"},
	"RENDER_DETECT_LANGUAGE": {"render.detect_language", envTypeBool, "Guess the language of unlabeled code blocks"},
	"RENDER_SANITIZE":        {"render.sanitize", envTypeBool, "Sanitize rendered HTML: true or false"},
	"RENDER_UNSAFE_HTML":     {"render.unsafe_html", envTypeBool, "Pass raw HTML through: true or false"},
	"RENDER_MAX_BYTES":       {"render.max_bytes", envTypeInt, "Largest accepted document in bytes (0 = unlimited)"},
	"IGNORE":                 {"ignore", envTypeSlice, "Comma-separated list of ignore patterns"},
	"JOBS":                   {"jobs", envTypeInt, "Number of parallel render workers (0 = auto)"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with MDSYNC_ (e.g., MDSYNC_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %q", envVar, value)
		}
		return setFloatField(cfg, mapping.field, f)
	case envTypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q", envVar, value)
		}
		return setDurationField(cfg, mapping.field, d)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "server.addr":
		cfg.Server.Addr = value
	case "render.style":
		cfg.Render.Style = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "line_sync":
		cfg.LineSync = config.Ptr(value)
	case "watch.poll":
		cfg.Watch.Poll = config.Ptr(value)
	case "render.highlight":
		cfg.Render.Highlight = config.Ptr(value)
	case "render.detect_language":
		cfg.Render.DetectLanguage = config.Ptr(value)
	case "render.sanitize":
		cfg.Render.Sanitize = config.Ptr(value)
	case "render.unsafe_html":
		cfg.Render.UnsafeHTML = config.Ptr(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "render.max_bytes":
		cfg.Render.MaxBytes = value
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setFloatField(cfg *config.Config, field string, value float64) error {
	switch field {
	case "zoom":
		cfg.Zoom = value
	default:
		return fmt.Errorf("unknown number field: %s", field)
	}
	return nil
}

func setDurationField(cfg *config.Config, field string, value time.Duration) error {
	switch field {
	case "watch.debounce":
		cfg.Watch.Debounce = value
	default:
		return fmt.Errorf("unknown duration field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Field       string
	Description string
}

// ListEnvVars returns every supported environment variable, sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Field: mapping.field, Description: mapping.help})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
