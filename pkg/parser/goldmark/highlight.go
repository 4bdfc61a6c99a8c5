package goldmark

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yaklabco/mdsync/pkg/langdetect"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// codeBlockRenderer renders fenced and indented code blocks as <pre> elements that carry
// the block's attributes, which the default goldmark renderer drops.
type codeBlockRenderer struct {
	opts      RenderOptions
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newCodeBlockRenderer(opts RenderOptions) *codeBlockRenderer {
	style := styles.Get(opts.Style)
	if style == nil {
		style = styles.Fallback
	}

	return &codeBlockRenderer{
		opts:  opts,
		style: style,
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	fenced, _ := node.(*ast.FencedCodeBlock)
	lang := string(fenced.Language(source))
	code := blockText(node, source)

	if lang == "" && r.opts.DetectLanguage {
		title := ""
		if fenced.Info != nil {
			title = infoTitle(string(fenced.Info.Segment.Value(source)))
		}
		if detected := langdetect.DetectWithHint(title, code); detected != langdetect.Text {
			lang = detected
		}
	}

	r.writeBlock(w, node, lang, code)
	return ast.WalkSkipChildren, nil
}

func (r *codeBlockRenderer) renderCodeBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	code := blockText(node, source)
	lang := ""
	if r.opts.DetectLanguage {
		if detected := langdetect.Detect(code); detected != langdetect.Text {
			lang = detected
		}
	}

	r.writeBlock(w, node, lang, code)
	return ast.WalkSkipChildren, nil
}

func (r *codeBlockRenderer) writeBlock(w util.BufWriter, node ast.Node, lang string, code []byte) {
	_, _ = w.WriteString("<pre")
	if node.Attributes() != nil {
		html.RenderAttributes(w, node, nil)
	}

	lexer := r.lexer(lang)
	if lexer != nil {
		_, _ = w.WriteString(` class="chroma"`)
	}
	_, _ = w.WriteString("><code")
	if lang != "" {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(">")

	if lexer == nil || !r.highlight(w, lexer, code) {
		_, _ = w.Write(util.EscapeHTML(code))
	}

	_, _ = w.WriteString("</code></pre>\n")
}

// lexer returns a lexer for lang, or nil when highlighting is off or lang is unknown.
//
//nolint:ireturn // chroma.Lexer is an external interface type
func (r *codeBlockRenderer) lexer(lang string) chroma.Lexer {
	if !r.opts.Highlight || lang == "" {
		return nil
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}

// highlight writes highlighted code and reports success. Nothing is written on failure.
func (r *codeBlockRenderer) highlight(w util.BufWriter, lexer chroma.Lexer, code []byte) bool {
	iterator, err := lexer.Tokenise(nil, string(code))
	if err != nil {
		return false
	}

	var buf strings.Builder
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return false
	}

	_, _ = w.WriteString(buf.String())
	return true
}

func (r *codeBlockRenderer) writeCSS(w io.Writer) error {
	return r.formatter.WriteCSS(w, r.style)
}

// blockText concatenates the raw lines of a block.
func blockText(node ast.Node, source []byte) []byte {
	var buf []byte
	lines := node.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf = append(buf, seg.Value(source)...)
	}
	return buf
}

// infoTitle extracts a title="name" or title=name attribute from a fence info string.
func infoTitle(info string) string {
	for field := range strings.FieldsSeq(info) {
		value, ok := strings.CutPrefix(field, "title=")
		if ok {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}
