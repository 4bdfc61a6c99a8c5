package scrollsync

import (
	"cmp"
	"sort"
	"strconv"
)

const (
	// NoTarget is returned when no block can be identified for a line. Callers must not scroll.
	NoTarget = 0

	// TopLine is returned for lines near the top of the document.
	TopLine = 1

	// AnchorPrefix prefixes the element id the renderer puts on every anchored block.
	AnchorPrefix = "pragma-line-"

	// Lines up to topSnapLine always snap to the top; block boundaries there are unreliable.
	topSnapLine = 3

	tieBreakFraction = 0.5
)

// Resolve maps an arbitrary source line to the best matching indexed line.
//
// Lines at or above the third snap to TopLine. An indexed line equal to targetLine is
// returned as is. Otherwise the target falls between the previous indexed line (or 0 before
// the first block) and the next one, and the nearer of the two wins; the exact midpoint goes
// to the next line. A target past the last indexed line, or any target against an empty
// index, yields NoTarget.
func (idx *Index) Resolve(targetLine int) int {
	if targetLine <= topSnapLine {
		return TopLine
	}

	count := idx.Len()
	pos, found := sort.Find(count, func(i int) int {
		return cmp.Compare(targetLine, idx.entries[i].Line)
	})
	if found {
		return targetLine
	}
	if pos >= count {
		return NoTarget
	}

	prev := 0
	if pos > 0 {
		prev = idx.entries[pos-1].Line
	}
	next := idx.entries[pos].Line
	if next == prev {
		return next
	}

	fraction := float64(targetLine-prev) / float64(next-prev)
	if fraction < tieBreakFraction {
		return prev
	}
	return next
}

// AnchorID returns the element id of the block starting at line.
func AnchorID(line int) string {
	return AnchorPrefix + strconv.Itoa(line)
}
