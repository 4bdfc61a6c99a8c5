// Package langdetect guesses the language of unlabeled code blocks so they can be highlighted.
// Detection combines go-enry's shebang and classifier strategies with a small set of
// high-signal source patterns.
package langdetect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Text is returned when no language can be identified with confidence.
const Text = "text"

// Fence tags produced by the pattern rules.
const (
	langGo         = "go"
	langPython     = "python"
	langJavaScript = "javascript"
	langJSON       = "json"
	langYAML       = "yaml"
	langHTML       = "html"
	langSQL        = "sql"
	langRust       = "rust"
	langDockerfile = "dockerfile"
	langBash       = "bash"
)

// Candidate languages handed to the enry classifier.
//
//nolint:gochecknoglobals // Read-only lookup table.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// sample is the block content prepared once for all rules.
type sample struct {
	raw     []byte
	trimmed []byte
	text    string
}

// rule reports whether a sample looks like lang.
type rule struct {
	lang  string
	match func(s sample) bool
}

// Rules run in order; the first match wins, so more specific rules come first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var patternRules = []rule{
	{langGo, func(s sample) bool {
		return bytes.HasPrefix(s.trimmed, []byte("package "))
	}},
	{langPython, looksLikePython},
	{langHTML, func(s sample) bool {
		lower := bytes.ToLower(s.trimmed)
		return containsAny(lower, "<!doctype html", "<html", "<head>", "<body>")
	}},
	{langJSON, func(s sample) bool {
		return (bytes.HasPrefix(s.trimmed, []byte("{")) || bytes.HasPrefix(s.trimmed, []byte("["))) &&
			bytes.Contains(s.trimmed, []byte(`"`))
	}},
	{langDockerfile, func(s sample) bool {
		return bytes.HasPrefix(s.trimmed, []byte("FROM ")) ||
			(bytes.Contains(s.raw, []byte("\nFROM ")) && bytes.Contains(s.raw, []byte("\nRUN "))) ||
			(bytes.Contains(s.raw, []byte("WORKDIR ")) && bytes.Contains(s.raw, []byte("COPY ")))
	}},
	{langSQL, func(s sample) bool {
		upper := strings.ToUpper(strings.TrimSpace(s.text))
		for _, verb := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, verb) {
				return true
			}
		}
		return false
	}},
	{langRust, func(s sample) bool {
		return strings.Contains(s.text, "fn main()") ||
			strings.Contains(s.text, "println!") ||
			strings.Contains(s.text, "let mut ")
	}},
	{langJavaScript, func(s sample) bool {
		return strings.Contains(s.text, "=>") ||
			strings.Contains(s.text, "const ") ||
			strings.Contains(s.text, "let ") ||
			strings.Contains(s.text, "console.log")
	}},
	{langYAML, looksLikeYAML},
}

// Detect returns a fence tag for code content, or Text when unsure.
func Detect(content []byte) string {
	return DetectWithHint("", content)
}

// DetectWithHint is Detect with a filename hint, such as the title of a code block.
// A hint with a known extension wins over content analysis.
func DetectWithHint(filename string, content []byte) string {
	if filename != "" && filepath.Ext(filename) != "" {
		if lang, safe := enry.GetLanguageByExtension(filename); safe {
			return normalize(lang)
		}
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return Text
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	snippet := sample{raw: content, trimmed: bytes.TrimSpace(content), text: string(content)}
	for _, r := range patternRules {
		if r.match(snippet) {
			return r.lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return Text
}

func looksLikePython(s sample) bool {
	if strings.Contains(s.text, "def ") && strings.Contains(s.text, "):") {
		return true
	}
	// Go imports use "import (".
	if strings.Contains(s.text, "import ") && !strings.Contains(s.text, "import (") &&
		(strings.Contains(s.text, "from ") || strings.HasPrefix(strings.TrimSpace(s.text), "import ")) {
		return true
	}
	return strings.Contains(s.text, "__name__") || strings.Contains(s.text, "__main__")
}

// looksLikeYAML counts "key: value" lines and root list items.
func looksLikeYAML(s sample) bool {
	keys := 0
	for line := range bytes.SplitSeq(s.raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.Contains(line, []byte("(")) &&
			!bytes.Contains(line, []byte("{")) &&
			!bytes.HasPrefix(line, []byte(`"`)) {
			keys++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			keys++
		}
	}
	return keys >= 2
}

func containsAny(haystack []byte, needles ...string) bool {
	for _, needle := range needles {
		if bytes.Contains(haystack, []byte(needle)) {
			return true
		}
	}
	return false
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return langBash
	}
	return strings.ToLower(lang)
}
