package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default value and documentation.
	// If false, generates a minimal commented template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// fieldDoc documents one top-level or nested setting in the full template.
type fieldDoc struct {
	key  string
	text string
}

//nolint:gochecknoglobals // Read-only lookup table.
var fieldDocs = []fieldDoc{
	{"flavor", "Markdown flavor: commonmark or gfm. GFM adds tables, strikethrough, task lists and autolinks."},
	{"line_sync", "Follow the editor cursor. When false the preview keeps its own scroll position as a percentage of the document."},
	{"zoom", "Zoom factor applied to the preview after every load, for example 1.25. Omit to keep the browser default."},
	{"server", "Preview server listen address."},
	{"watch", "Re-read the previewed file after changes. debounce is the quiet period before reading; poll uses stat polling instead of file notifications."},
	{"render", "HTML rendering. sanitize passes output through an allowlist that keeps scroll anchors; unsafe_html lets raw HTML from the source through."},
	{"ignore", "Glob patterns skipped by 'mdsync render'. ** matches any number of directories."},
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	if opts.Full {
		return generateFullTemplate()
	}
	return []byte(minimalTemplate), nil
}

const minimalTemplate = `# mdsync configuration
# See: https://github.com/yaklabco/mdsync

# Markdown flavor: commonmark or gfm
flavor: gfm

# Follow the editor cursor (false keeps the preview's own scroll position)
line_sync: true

# Zoom factor applied after each load
# zoom: 1.0

# server:
#   addr: 127.0.0.1:7474

# watch:
#   debounce: 100ms
#   poll: false

# render:
#   highlight: true
#   style: github
#   detect_language: true
#   sanitize: false
#   unsafe_html: false
#   max_bytes: 8388608

# File patterns to skip when rendering directories (glob patterns)
# ignore:
#   - "vendor/**"
#   - "node_modules/**"
`

// generateFullTemplate renders the defaults, one documented block per top-level key.
func generateFullTemplate() ([]byte, error) {
	defaults := NewConfig()
	defaults.Ignore = []string{"vendor/**", "node_modules/**"}

	data, err := defaults.ToYAML()
	if err != nil {
		return nil, err
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n#\n# This template lists every setting with its default value.\n")

	for _, field := range fieldDocs {
		node, ok := doc[field.key]
		if !ok {
			continue
		}

		fmt.Fprintf(&buf, "\n# %s\n", wrapComment(field.text, commentWrapWidth))

		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(YAMLIndent())
		if err := encoder.Encode(map[string]*yaml.Node{field.key: &node}); err != nil {
			return nil, fmt.Errorf("encode %s: %w", field.key, err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("encode %s: %w", field.key, err)
		}
	}

	return buf.Bytes(), nil
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n# ")
}

// templateToJSON renders the defaults as indented JSON.
func templateToJSON() ([]byte, error) {
	data, err := NewConfig().ToYAML()
	if err != nil {
		return nil, err
	}

	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# mdsync configuration
# See: https://github.com/yaklabco/mdsync`
}
