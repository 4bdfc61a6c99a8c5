package runner

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/yaklabco/mdsync/pkg/mdast"
)

//nolint:gochecknoglobals // Parsed once.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="mdsync">
<title>{{.Title}}</title>
<style>
body { max-width: 52rem; margin: 2rem auto; padding: 0 1rem; font: 16px/1.6 system-ui, sans-serif; }
pre { overflow-x: auto; padding: .75rem; }
{{.Stylesheet}}
</style>
</head>
<body>
<main>
{{.Body}}
</main>
</body>
</html>
`))

type pageData struct {
	Title      string
	Stylesheet template.CSS
	Body       template.HTML
}

// RenderPage wraps a rendered fragment in a standalone HTML document.
// The body is trusted renderer output and is not escaped.
func RenderPage(title string, stylesheet, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title:      title,
		Stylesheet: template.CSS(stylesheet), //nolint:gosec // Generated by chroma.
		Body:       template.HTML(body),      //nolint:gosec // Produced by the Markdown renderer.
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// PageTitle returns the text of the first heading, or the file name without extension.
func PageTitle(snapshot *mdast.FileSnapshot) string {
	heading := mdast.FindFirst(snapshot.Root, func(n *mdast.Node) bool {
		return n.Kind == mdast.NodeHeading && n.IsPositioned()
	})
	if heading != nil {
		line := strings.TrimSpace(string(snapshot.LineContent(heading.Line)))
		if title := strings.TrimSpace(strings.Trim(line, "#")); title != "" {
			return title
		}
	}

	base := filepath.Base(snapshot.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath maps a source file to its page. Sources outside workDir keep only their name.
func OutputPath(workDir, outDir, source string) string {
	name := strings.TrimSuffix(source, filepath.Ext(source)) + ".html"
	if outDir == "" {
		return name
	}

	rel, err := filepath.Rel(workDir, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(name)
	}
	return filepath.Join(absUnder(workDir, outDir), rel)
}
