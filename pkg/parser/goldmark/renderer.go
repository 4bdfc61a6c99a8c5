package goldmark

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// Overrides the default HTML code block renderers, registered at 1000.
const codeRendererPriority = 200

// RenderOptions controls HTML output.
type RenderOptions struct {
	// Highlight enables chroma syntax highlighting of code blocks.
	Highlight bool

	// Style is the chroma style name used for the stylesheet.
	Style string

	// DetectLanguage guesses the language of code blocks without an info string.
	DetectLanguage bool

	// Sanitize passes the output through a bluemonday policy that keeps anchor ids.
	Sanitize bool

	// UnsafeHTML renders raw HTML blocks and inline HTML instead of omitting them.
	UnsafeHTML bool
}

// DefaultRenderOptions returns the options used when nothing is configured.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Highlight:      true,
		Style:          DefaultStyle,
		DetectLanguage: true,
	}
}

// Renderer implements scrollsync.Renderer using goldmark's HTML renderer.
type Renderer struct {
	flavor string
	opts   RenderOptions
	md     goldmark.Markdown
	code   *codeBlockRenderer
	policy *bluemonday.Policy
}

// NewRenderer creates a renderer for the given flavor.
func NewRenderer(flavor string, opts RenderOptions) *Renderer {
	f := flavorOrDefault(flavor)
	code := newCodeBlockRenderer(opts)

	htmlOpts := []renderer.Option{}
	if opts.UnsafeHTML {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}

	r := &Renderer{
		flavor: f,
		opts:   opts,
		code:   code,
		md: newGoldmarkInstance(f,
			goldmark.WithRendererOptions(htmlOpts...),
			goldmark.WithRendererOptions(renderer.WithNodeRenderers(util.Prioritized(code, codeRendererPriority))),
		),
	}
	if opts.Sanitize {
		r.policy = newPolicy()
	}

	return r
}

// Options returns the renderer options.
func (r *Renderer) Options() RenderOptions {
	return r.opts
}

// Render converts a parsed snapshot to an HTML fragment.
// Snapshots produced by Parser are rendered from their goldmark tree; others are reparsed.
func (r *Renderer) Render(ctx context.Context, snapshot *FileSnapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render cancelled: %w", err)
	}
	if snapshot == nil {
		return nil, errors.New("render: nil snapshot")
	}

	doc, ok := nativeDocument(snapshot)
	if !ok {
		doc = r.md.Parser().Parse(text.NewReader(snapshot.Content))
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, snapshot.Content, doc); err != nil {
		return nil, fmt.Errorf("render %s: %w", snapshot.Path, err)
	}

	out := buf.Bytes()
	if r.policy != nil {
		out = r.policy.SanitizeBytes(out)
	}

	return out, nil
}

// Stylesheet returns the CSS for highlighted code blocks, or nil when highlighting is off.
func (r *Renderer) Stylesheet() ([]byte, error) {
	if !r.opts.Highlight {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := r.code.writeCSS(&buf); err != nil {
		return nil, fmt.Errorf("write code stylesheet: %w", err)
	}
	return buf.Bytes(), nil
}
