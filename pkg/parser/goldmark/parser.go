// Package goldmark parses and renders Markdown with the goldmark library.
//
// Every block whose source line can be determined is tagged with an element id built by
// scrollsync.AnchorID, and the same blocks are marked Anchored in the mdast tree, so the
// rendered markup and the scroll index always agree.
package goldmark

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/mdsync/pkg/mdast"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// ErrTooLarge is returned for documents above the configured size limit.
var ErrTooLarge = errors.New("document too large")

// Parser implements scrollsync.Parser using goldmark.
type Parser struct {
	flavor   string
	maxBytes int
	md       goldmark.Markdown
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxBytes rejects documents larger than n bytes. Zero means no limit.
func WithMaxBytes(n int) ParserOption {
	return func(p *Parser) {
		p.maxBytes = n
	}
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "commonmark" and "gfm".
// Invalid flavors default to "commonmark".
func New(flavor string, opts ...ParserOption) *Parser {
	f := flavorOrDefault(flavor)
	p := &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse converts raw Markdown bytes into a FileSnapshot whose Root holds the block tree.
// The goldmark document, with anchor ids attached, is kept in Native for the Renderer.
//
// Returns nil and an error if the document exceeds the size limit or ctx is cancelled.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*FileSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	if p.maxBytes > 0 && len(content) > p.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, path, len(content), p.maxBytes)
	}

	snapshot := mdast.NewFileSnapshot(path, copyContent(content))

	pc := parser.NewContext()
	gmDoc := p.md.Parser().Parse(text.NewReader(snapshot.Content), parser.WithContext(pc))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	mapper := newMapper(snapshot.Content, spansFrom(pc))
	snapshot.Root = mapper.mapDocument(gmDoc)
	snapshot.Native = gmDoc

	mdast.SetFile(snapshot.Root, snapshot)

	return snapshot, nil
}

// FileSnapshot is a type alias for mdast.FileSnapshot for convenience.
type FileSnapshot = mdast.FileSnapshot

// flavorOrDefault returns the flavor if valid, otherwise defaults to CommonMark.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

// newGoldmarkInstance creates a goldmark.Markdown with the line transformer installed.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string, extra ...goldmark.Option) goldmark.Markdown {
	opts := []goldmark.Option{
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(&lineTransformer{}, transformerPriority)),
		),
	}

	// Configure extensions based on flavor.
	switch flavor {
	case FlavorGFM:
		opts = append(opts,
			goldmark.WithExtensions(
				extension.GFM,
			),
		)
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(append(opts, extra...)...)
}

// nativeDocument returns the goldmark document stored in a snapshot, if any.
func nativeDocument(snapshot *FileSnapshot) (ast.Node, bool) {
	doc, ok := snapshot.Native.(ast.Node)
	return doc, ok && doc != nil
}

// copyContent creates a copy of the content slice to ensure immutability.
func copyContent(content []byte) []byte {
	if content == nil {
		return nil
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp
}
