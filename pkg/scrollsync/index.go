package scrollsync

import (
	"slices"

	"github.com/yaklabco/mdsync/pkg/mdast"
)

// Entry is one indexed block.
type Entry struct {
	// Line is the 1-based source line where the block begins.
	Line int

	// Kind is the block kind, kept for diagnostics.
	Kind mdast.NodeKind

	// Depth is the nesting depth below the document root (top-level blocks are 1).
	Depth int
}

// Index is an immutable, line-ordered sequence of block entries.
// A nil *Index behaves as an empty index.
type Index struct {
	entries []Entry
}

type indexFrame struct {
	node  *mdast.Node
	depth int
}

// BuildIndex flattens the block tree under root in pre-order (a block before its children,
// children in document order). Only positioned blocks that carry an anchor in the rendered
// markup are recorded; repeated lines are kept.
func BuildIndex(root *mdast.Node) *Index {
	idx := &Index{}
	if root == nil {
		return idx
	}

	stack := []indexFrame{{node: root}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := frame.node
		if node != root && node.IsPositioned() && node.Anchored {
			idx.entries = append(idx.entries, Entry{Line: node.Line, Kind: node.Kind, Depth: frame.depth})
		}

		for child := node.LastChild; child != nil; child = child.Prev {
			stack = append(stack, indexFrame{node: child, depth: frame.depth + 1})
		}
	}

	// A parser may position a container after its first child. Restore the line order
	// without disturbing pre-order among equal lines.
	if !slices.IsSortedFunc(idx.entries, compareEntries) {
		slices.SortStableFunc(idx.entries, compareEntries)
	}

	return idx
}

// NewIndex builds an index directly from block lines. Non-positive lines are skipped.
func NewIndex(lines ...int) *Index {
	idx := &Index{entries: make([]Entry, 0, len(lines))}
	for _, line := range lines {
		if line > 0 {
			idx.entries = append(idx.entries, Entry{Line: line, Kind: mdast.NodeRaw, Depth: 1})
		}
	}
	slices.SortStableFunc(idx.entries, compareEntries)
	return idx
}

func compareEntries(a, b Entry) int {
	return a.Line - b.Line
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// At returns the entry at position i.
func (idx *Index) At(i int) Entry {
	return idx.entries[i]
}

// Entries returns a copy of all entries.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.entries)
}

// Lines returns the indexed lines in order.
func (idx *Index) Lines() []int {
	lines := make([]int, idx.Len())
	for i := range lines {
		lines[i] = idx.entries[i].Line
	}
	return lines
}
