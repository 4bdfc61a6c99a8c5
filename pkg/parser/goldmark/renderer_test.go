package goldmark

import (
	"context"
	"strings"
	"testing"

	"github.com/yaklabco/mdsync/pkg/mdast"
)

func render(t *testing.T, flavor string, opts RenderOptions, source string) string {
	t.Helper()

	snapshot, err := New(flavor).Parse(context.Background(), "doc.md", []byte(source))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	out, err := NewRenderer(flavor, opts).Render(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return string(out)
}

func TestRenderer_Anchors(t *testing.T) {
	out := render(t, FlavorCommonMark, RenderOptions{}, sampleDoc)

	for _, want := range []string{
		`<h1 id="pragma-line-1">Title</h1>`,
		`<p id="pragma-line-3">`,
		`<ul id="pragma-line-6">`,
		`<blockquote id="pragma-line-9">`,
		`<pre id="pragma-line-11"><code class="language-go">func main() {}`,
		`<pre id="pragma-line-17"><code>indented`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "pragma-line-15") {
		t.Errorf("thematic break should not be anchored:\n%s", out)
	}
}

func TestRenderer_Highlight(t *testing.T) {
	out := render(t, FlavorCommonMark, DefaultRenderOptions(), "```go\nfunc main() {}\n```\n")

	if !strings.Contains(out, `<pre id="pragma-line-1" class="chroma"><code class="language-go">`) {
		t.Errorf("expected highlighted block with anchor:\n%s", out)
	}
	if !strings.Contains(out, "<span") {
		t.Errorf("expected chroma spans:\n%s", out)
	}
}

func TestRenderer_DetectLanguage(t *testing.T) {
	opts := RenderOptions{DetectLanguage: true}
	out := render(t, FlavorCommonMark, opts, "```\npackage main\n```\n")

	if !strings.Contains(out, `class="language-go"`) {
		t.Errorf("expected detected go language:\n%s", out)
	}

	out = render(t, FlavorCommonMark, RenderOptions{}, "```\npackage main\n```\n")
	if strings.Contains(out, "language-") {
		t.Errorf("detection should be off:\n%s", out)
	}
}

func TestRenderer_EscapesCode(t *testing.T) {
	out := render(t, FlavorCommonMark, RenderOptions{}, "```\n<b>&</b>\n```\n")

	if !strings.Contains(out, "&lt;b&gt;&amp;&lt;/b&gt;") {
		t.Errorf("code not escaped:\n%s", out)
	}
}

func TestRenderer_RawHTML(t *testing.T) {
	source := "<div>raw</div>\n"

	if out := render(t, FlavorCommonMark, RenderOptions{}, source); strings.Contains(out, "<div>raw</div>") {
		t.Errorf("raw HTML should be omitted by default:\n%s", out)
	}

	if out := render(t, FlavorCommonMark, RenderOptions{UnsafeHTML: true}, source); !strings.Contains(out, "<div>raw</div>") {
		t.Errorf("raw HTML should be kept with UnsafeHTML:\n%s", out)
	}
}

func TestRenderer_SanitizeKeepsAnchors(t *testing.T) {
	opts := RenderOptions{UnsafeHTML: true, Sanitize: true, Highlight: true, Style: DefaultStyle}
	out := render(t, FlavorCommonMark, opts, "# Title\n\n<script>alert(1)</script>\n\n```go\nx := 1\n```\n")

	if strings.Contains(out, "<script>") {
		t.Errorf("script should be stripped:\n%s", out)
	}
	if !strings.Contains(out, `id="pragma-line-1"`) || !strings.Contains(out, `id="pragma-line-5"`) {
		t.Errorf("anchor ids should survive sanitizing:\n%s", out)
	}
	if !strings.Contains(out, `class="chroma"`) {
		t.Errorf("highlight classes should survive sanitizing:\n%s", out)
	}
}

func TestRenderer_GFMTable(t *testing.T) {
	out := render(t, FlavorGFM, RenderOptions{}, "| a | b |\n|---|---|\n| 1 | 2 |\n")

	if !strings.Contains(out, `<table id="pragma-line-1">`) {
		t.Errorf("expected anchored table:\n%s", out)
	}
}

func TestRenderer_ReparsesForeignSnapshot(t *testing.T) {
	snapshot := mdast.NewFileSnapshot("doc.md", []byte("# Hi\n"))

	out, err := NewRenderer(FlavorCommonMark, RenderOptions{}).Render(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(out), `<h1 id="pragma-line-1">Hi</h1>`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRenderer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewRenderer(FlavorCommonMark, RenderOptions{}).Render(ctx, mdast.NewFileSnapshot("x.md", nil)); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRenderer_Stylesheet(t *testing.T) {
	css, err := NewRenderer(FlavorCommonMark, DefaultRenderOptions()).Stylesheet()
	if err != nil {
		t.Fatalf("Stylesheet() error = %v", err)
	}
	if !strings.Contains(string(css), ".chroma") {
		t.Errorf("stylesheet missing .chroma rules:\n%s", css)
	}

	css, err = NewRenderer(FlavorCommonMark, RenderOptions{}).Stylesheet()
	if err != nil || css != nil {
		t.Errorf("Stylesheet() without highlighting = %q, %v", css, err)
	}
}

func TestInfoTitle(t *testing.T) {
	tests := []struct {
		info string
		want string
	}{
		{`title="main.go"`, "main.go"},
		{`go title=main.go`, "main.go"},
		{`python`, ""},
		{``, ""},
	}

	for _, tt := range tests {
		if got := infoTitle(tt.info); got != tt.want {
			t.Errorf("infoTitle(%q) = %q, want %q", tt.info, got, tt.want)
		}
	}
}
