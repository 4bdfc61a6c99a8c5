package goldmark

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/yaklabco/mdsync/pkg/mdast"
	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

const sampleDoc = "# Title\n" + // 1
	"\n" +
	"First paragraph\n" + // 3
	"continues here.\n" + // 4
	"\n" +
	"- one\n" + // 6
	"- two\n" + // 7
	"\n" +
	"> quoted\n" + // 9
	"\n" +
	"```go\n" + // 11
	"func main() {}\n" +
	"```\n" + // 13
	"\n" +
	"---\n" + // 15
	"\n" +
	"    indented\n" // 17

func TestParser_New(t *testing.T) {
	tests := []struct {
		name       string
		flavor     string
		wantFlavor string
	}{
		{"commonmark", FlavorCommonMark, FlavorCommonMark},
		{"gfm", FlavorGFM, FlavorGFM},
		{"invalid defaults to commonmark", "invalid", FlavorCommonMark},
		{"empty defaults to commonmark", "", FlavorCommonMark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.flavor)

			if p.Flavor() != tt.wantFlavor {
				t.Errorf("Flavor() = %q, want %q", p.Flavor(), tt.wantFlavor)
			}
		})
	}
}

func TestParser_Parse_Basic(t *testing.T) {
	parser := New(FlavorCommonMark)
	ctx := context.Background()

	content := []byte("# Hello\n\nWorld")
	snapshot, err := parser.Parse(ctx, "test.md", content)

	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if snapshot.Path != "test.md" {
		t.Errorf("Path = %q, want %q", snapshot.Path, "test.md")
	}

	// Verify content is a copy, not the same slice.
	if &snapshot.Content[0] == &content[0] {
		t.Error("Content should be a copy, not the same slice")
	}

	if snapshot.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", snapshot.LineCount())
	}

	if snapshot.Root == nil || snapshot.Root.Kind != mdast.NodeDocument {
		t.Fatal("expected a document root")
	}

	if _, ok := nativeDocument(snapshot); !ok {
		t.Error("expected the goldmark document to be kept in Native")
	}

	// Check file back-references.
	err = mdast.Walk(snapshot.Root, func(n *mdast.Node) error {
		if n.File != snapshot {
			t.Errorf("node %v has incorrect File reference", n.Kind)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Walk error: %v", err)
	}
}

func TestParser_Parse_Empty(t *testing.T) {
	parser := New(FlavorCommonMark)

	snapshot, err := parser.Parse(context.Background(), "empty.md", []byte{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if snapshot.Root == nil || snapshot.Root.HasChildren() {
		t.Error("expected an empty document root")
	}

	if idx := scrollsync.BuildIndex(snapshot.Root); idx.Len() != 0 {
		t.Errorf("index length = %d, want 0", idx.Len())
	}
}

func TestParser_Parse_ContextCancelled(t *testing.T) {
	parser := New(FlavorCommonMark)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := parser.Parse(ctx, "test.md", []byte("# Hello"))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParser_Parse_ContextTimeout(t *testing.T) {
	parser := New(FlavorCommonMark)

	ctx, cancel := context.WithTimeout(context.Background(), -1*time.Second)
	defer cancel()

	_, err := parser.Parse(ctx, "test.md", []byte("# Hello"))

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestParser_Parse_MaxBytes(t *testing.T) {
	parser := New(FlavorCommonMark, WithMaxBytes(8))

	if _, err := parser.Parse(context.Background(), "small.md", []byte("# ok")); err != nil {
		t.Errorf("unexpected error for small document: %v", err)
	}

	_, err := parser.Parse(context.Background(), "big.md", []byte("# far too long"))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}
}

func TestParser_Parse_BlockLines(t *testing.T) {
	parser := New(FlavorCommonMark)

	snapshot, err := parser.Parse(context.Background(), "sample.md", []byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		kind     mdast.NodeKind
		line     int
		endLine  int
		anchored bool
	}{
		{mdast.NodeHeading, 1, 1, true},
		{mdast.NodeList, 6, 7, true},
		{mdast.NodeBlockquote, 9, 9, true},
		{mdast.NodeCodeBlock, 11, 13, true},
		{mdast.NodeCodeBlock, 17, 17, true},
	}

	for _, tt := range tests {
		node := mdast.FindFirst(snapshot.Root, func(n *mdast.Node) bool {
			return n.Kind == tt.kind && n.Line == tt.line
		})
		if node == nil {
			t.Errorf("no %v at line %d", tt.kind, tt.line)
			continue
		}
		if node.EndLine != tt.endLine {
			t.Errorf("%v at line %d: EndLine = %d, want %d", tt.kind, tt.line, node.EndLine, tt.endLine)
		}
		if node.Anchored != tt.anchored {
			t.Errorf("%v at line %d: Anchored = %v, want %v", tt.kind, tt.line, node.Anchored, tt.anchored)
		}
	}

	paragraph := mdast.FindFirst(snapshot.Root, func(n *mdast.Node) bool {
		return n.Kind == mdast.NodeParagraph && n.Parent == snapshot.Root
	})
	if paragraph == nil || paragraph.Line != 3 || paragraph.EndLine != 4 {
		t.Errorf("top-level paragraph = %+v, want lines 3-4", paragraph)
	} else if got := string(paragraph.Text()); got != "First paragraph\ncontinues here." {
		t.Errorf("paragraph text = %q", got)
	}

	brk := nodesOfKind(snapshot.Root, mdast.NodeThematicBreak)
	if len(brk) != 1 || brk[0].IsPositioned() || brk[0].Anchored {
		t.Errorf("thematic break should be present and unpositioned, got %+v", brk)
	}
}

func TestAnchorable(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want bool
	}{
		{"paragraph", ast.NewParagraph(), true},
		{"heading", ast.NewHeading(2), true},
		{"blockquote", ast.NewBlockquote(), true},
		{"fenced code", ast.NewFencedCodeBlock(nil), true},
		{"table", east.NewTable(), true},
		{"thematic break", ast.NewThematicBreak(), false},
		{"text block", ast.NewTextBlock(), false},
		{"raw html", ast.NewHTMLBlock(ast.HTMLBlockType1), false},
	}

	for _, tt := range tests {
		if got := anchorable(tt.node); got != tt.want {
			t.Errorf("anchorable(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParser_Parse_IndexAgreesWithMarkup(t *testing.T) {
	parser := New(FlavorCommonMark)

	snapshot, err := parser.Parse(context.Background(), "sample.md", []byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	lines := scrollsync.BuildIndex(snapshot.Root).Lines()
	if !slices.IsSorted(lines) {
		t.Errorf("index lines not sorted: %v", lines)
	}

	for _, want := range []int{1, 3, 6, 9, 11, 17} {
		if !slices.Contains(lines, want) {
			t.Errorf("index %v is missing line %d", lines, want)
		}
	}
	if slices.Contains(lines, 15) {
		t.Errorf("index %v should not contain the thematic break", lines)
	}

	// The resolver lands on anchored blocks only.
	idx := scrollsync.BuildIndex(snapshot.Root)
	if got := idx.Resolve(12); got != 11 {
		t.Errorf("Resolve(12) = %d, want 11", got)
	}
	if got := idx.Resolve(16); got != 17 {
		t.Errorf("Resolve(16) = %d, want 17", got)
	}
	if got := idx.Resolve(40); got != scrollsync.NoTarget {
		t.Errorf("Resolve(40) = %d, want NoTarget", got)
	}
}

func TestParser_Parse_GFMTable(t *testing.T) {
	parser := New(FlavorGFM)

	content := []byte("intro\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	snapshot, err := parser.Parse(context.Background(), "table.md", content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tables := nodesOfKind(snapshot.Root, mdast.NodeTable)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0].Line != 3 || !tables[0].Anchored {
		t.Errorf("table Line = %d Anchored = %v, want 3 true", tables[0].Line, tables[0].Anchored)
	}
	if tables[0].HasChildren() {
		t.Error("table rows should not be mapped")
	}
}

func TestParser_Parse_ListAttrs(t *testing.T) {
	parser := New(FlavorCommonMark)

	snapshot, err := parser.Parse(context.Background(), "list.md", []byte("3. three\n4. four\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	lists := nodesOfKind(snapshot.Root, mdast.NodeList)
	if len(lists) != 1 || lists[0].Block == nil || lists[0].Block.List == nil {
		t.Fatal("expected one list with attributes")
	}

	attrs := lists[0].Block.List
	if !attrs.Ordered || attrs.StartNumber != 3 || !attrs.Tight {
		t.Errorf("list attrs = %+v", attrs)
	}
	if items := nodesOfKind(snapshot.Root, mdast.NodeListItem); len(items) != 2 || items[1].Line != 2 {
		t.Errorf("list items = %+v", items)
	}
}

func TestParser_Parse_FencedWithoutInfo(t *testing.T) {
	parser := New(FlavorCommonMark)

	snapshot, err := parser.Parse(context.Background(), "code.md", []byte("text\n\n```\nplain\n```\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	code := nodesOfKind(snapshot.Root, mdast.NodeCodeBlock)
	if len(code) != 1 {
		t.Fatalf("expected 1 code block, got %d", len(code))
	}
	if code[0].Line != 3 || code[0].EndLine != 5 {
		t.Errorf("code block lines = %d-%d, want 3-5", code[0].Line, code[0].EndLine)
	}
	if code[0].Block.CodeBlock.Info != "" || code[0].Block.CodeBlock.Indented {
		t.Errorf("code block attrs = %+v", code[0].Block.CodeBlock)
	}
}

func nodesOfKind(root *mdast.Node, kind mdast.NodeKind) []*mdast.Node {
	return mdast.FindAll(root, func(n *mdast.Node) bool { return n.Kind == kind })
}
