package mdast

// NodeKind classifies the type of an AST node.
type NodeKind uint16

// Node kinds for block-level Markdown elements.
// Inline content is not modelled; a block's inline children stay in the parser's own tree.
const (
	NodeDocument NodeKind = iota

	NodeParagraph
	NodeHeading
	NodeList
	NodeListItem
	NodeBlockquote
	NodeCodeBlock
	NodeThematicBreak
	NodeHTMLBlock
	NodeTable

	// Fallback for unrecognized content.
	NodeRaw
)

//nolint:gochecknoglobals // Read-only lookup table.
var nodeKindNames = [...]string{
	NodeDocument:      "Document",
	NodeParagraph:     "Paragraph",
	NodeHeading:       "Heading",
	NodeList:          "List",
	NodeListItem:      "ListItem",
	NodeBlockquote:    "Blockquote",
	NodeCodeBlock:     "CodeBlock",
	NodeThematicBreak: "ThematicBreak",
	NodeHTMLBlock:     "HTMLBlock",
	NodeTable:         "Table",
	NodeRaw:           "Raw",
}

// String returns the kind name without the Node prefix.
func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// Node represents a single block in the Markdown AST.
// Nodes form a tree structure with parent/child/sibling relationships.
type Node struct {
	// Kind identifies what type of node this is.
	Kind NodeKind

	// Tree structure pointers.
	Parent     *Node
	FirstChild *Node
	LastChild  *Node
	Prev       *Node
	Next       *Node

	// Line is the 1-based source line where the block begins.
	// Zero means the parser could not position the block.
	Line int

	// EndLine is the 1-based source line where the block ends (inclusive).
	EndLine int

	// Anchored is true when the rendered markup carries a line anchor for this block.
	Anchored bool

	// File is a back-reference to the containing FileSnapshot.
	File *FileSnapshot

	// Block holds kind-specific attributes.
	Block *BlockAttrs
}

// IsContainer returns true for kinds that hold other blocks.
func (n *Node) IsContainer() bool {
	switch n.Kind {
	case NodeDocument, NodeList, NodeListItem, NodeBlockquote:
		return true
	default:
		return false
	}
}

// IsPositioned returns true if the node has a known source line.
func (n *Node) IsPositioned() bool {
	return n.Line > 0
}

// HasChildren returns true if this node has any children.
func (n *Node) HasChildren() bool {
	return n.FirstChild != nil
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	count := 0
	for child := n.FirstChild; child != nil; child = child.Next {
		count++
	}
	return count
}

// Children returns a slice of all direct children.
func (n *Node) Children() []*Node {
	var children []*Node
	for child := n.FirstChild; child != nil; child = child.Next {
		children = append(children, child)
	}
	return children
}

// Text returns the source lines spanned by the node.
// Returns nil if the node has no associated file or position.
func (n *Node) Text() []byte {
	if n.File == nil || !n.IsPositioned() {
		return nil
	}

	start, ok := n.File.Offset(n.Line, 1)
	if !ok {
		return nil
	}

	last := n.EndLine
	if last < n.Line {
		last = n.Line
	}
	if last > len(n.File.Lines) {
		last = len(n.File.Lines)
	}

	return n.File.Content[start:n.File.Lines[last-1].NewlineStart]
}
