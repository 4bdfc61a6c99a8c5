package goldmark

import (
	"github.com/yaklabco/mdsync/pkg/mdast"
	"github.com/yaklabco/mdsync/pkg/scrollsync"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Runs after the GFM paragraph transformers (tables) have reshaped the tree.
const transformerPriority = 10000

//nolint:gochecknoglobals // Context key, allocated once.
var spansKey = parser.NewContextKey()

// blockSpan is the 1-based line range of a goldmark block.
type blockSpan struct {
	line     int
	endLine  int
	anchored bool
}

// extent is a byte range; start is -1 when nothing in the subtree has a source position.
type extent struct {
	start int
	stop  int
}

func (e extent) known() bool {
	return e.start >= 0
}

func (e *extent) include(start, stop int) {
	if start < 0 {
		return
	}
	if e.start < 0 || start < e.start {
		e.start = start
	}
	if stop > e.stop {
		e.stop = stop
	}
}

func (e *extent) merge(other extent) {
	if other.known() {
		e.include(other.start, other.stop)
	}
}

// lineTransformer computes the source line of every block and attaches anchor ids to the
// blocks whose HTML renderers emit attributes.
type lineTransformer struct{}

// Transform implements parser.ASTTransformer.
func (t *lineTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	lines := mdast.BuildLines(source)
	extents := make(map[ast.Node]extent)
	spans := make(map[ast.Node]blockSpan)

	// Children are left before their parent, so every child extent is final when the
	// parent is closed.
	//nolint:errcheck // The walker never returns an error.
	ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			return ast.WalkContinue, nil
		}

		ext := ownExtent(node)
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			ext.merge(extents[child])
		}
		extents[node] = ext

		if node.Type() != ast.TypeBlock || !ext.known() {
			return ast.WalkContinue, nil
		}

		span := blockSpan{
			line:    mdast.LineAt(lines, ext.start),
			endLine: mdast.LineAt(lines, max(ext.stop-1, ext.start)),
		}
		if fenced, ok := node.(*ast.FencedCodeBlock); ok {
			span = fencedSpan(fenced, span, lines)
		}

		if anchorable(node) && span.line > 0 {
			node.SetAttributeString("id", []byte(scrollsync.AnchorID(span.line)))
			span.anchored = true
		}
		spans[node] = span

		return ast.WalkContinue, nil
	})

	pc.Set(spansKey, spans)
}

// ownExtent returns the byte range a node covers by itself, ignoring children.
func ownExtent(node ast.Node) extent {
	ext := extent{start: -1, stop: -1}

	if textNode, ok := node.(*ast.Text); ok {
		ext.include(textNode.Segment.Start, textNode.Segment.Stop)
		return ext
	}

	if node.Type() != ast.TypeBlock {
		return ext
	}

	segments := node.Lines()
	for i := range segments.Len() {
		seg := segments.At(i)
		ext.include(seg.Start, seg.Stop)
	}

	if fenced, ok := node.(*ast.FencedCodeBlock); ok && fenced.Info != nil {
		ext.include(fenced.Info.Segment.Start, fenced.Info.Segment.Stop)
	}

	return ext
}

// fencedSpan widens a fenced code block to include its fences. goldmark records only the
// content lines and the info string.
func fencedSpan(node *ast.FencedCodeBlock, span blockSpan, lines []mdast.LineInfo) blockSpan {
	if node.Info == nil {
		span.line = max(span.line-1, 1)
	}
	span.endLine = max(min(span.endLine+1, len(lines)), span.line)
	return span
}

// anchorable reports whether the HTML for node carries its attributes.
// Tight-list text blocks and raw HTML render without a wrapping element of their own.
// Thematic breaks have no source segments, so their line is never known.
func anchorable(node ast.Node) bool {
	switch node.Kind() {
	case ast.KindParagraph,
		ast.KindHeading,
		ast.KindList,
		ast.KindListItem,
		ast.KindBlockquote,
		ast.KindCodeBlock,
		ast.KindFencedCodeBlock,
		east.KindTable:
		return true
	default:
		return false
	}
}

// spansFrom retrieves the spans recorded by lineTransformer.
func spansFrom(pc parser.Context) map[ast.Node]blockSpan {
	spans, _ := pc.Get(spansKey).(map[ast.Node]blockSpan)
	return spans
}
