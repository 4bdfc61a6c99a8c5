// Package mdast provides the Markdown block model shared by the parser, the
// scroll-sync index and the renderer. It defines:
// - FileSnapshot: the parsed file with line metadata
// - Node: block-level structure tagged with 1-based source lines
package mdast

// FileSnapshot is an immutable view of a Markdown file at one render.
// It holds the raw content, line metadata and the block tree.
type FileSnapshot struct {
	// Path is the file path (may be empty for in-memory content).
	Path string

	// Content is the full file bytes.
	Content []byte

	// Lines contains metadata for each line in the file.
	Lines []LineInfo

	// Root is the AST root node (Document).
	Root *Node

	// Native holds the parser's own tree so a matching renderer can reuse it.
	// Must be treated as opaque by generic logic.
	Native any
}

// LineInfo holds metadata for a single line in a file.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of file).
	EndOffset int
}

// NewFileSnapshot creates a new FileSnapshot from content.
// It builds the line index but does not parse (that requires a Parser).
func NewFileSnapshot(path string, content []byte) *FileSnapshot {
	return &FileSnapshot{
		Path:    path,
		Content: content,
		Lines:   BuildLines(content),
	}
}

// BlockCount returns the number of positioned blocks below the root.
func (f *FileSnapshot) BlockCount() int {
	if f == nil || f.Root == nil {
		return 0
	}
	count := 0
	//nolint:errcheck,revive // Walk only returns nil errors in this usage
	Walk(f.Root, func(n *Node) error {
		if n != f.Root && n.IsPositioned() {
			count++
		}
		return nil
	})
	return count
}
