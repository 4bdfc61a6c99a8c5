package scrollsync

import (
	"fmt"
	"math"
)

// Mode identifies which representation of the viewport position is authoritative.
type Mode uint8

const (
	// ModePercentage pins the viewport to a fraction of its content height.
	ModePercentage Mode = iota

	// ModeLine pins the viewport to a source line.
	ModeLine
)

// String returns a short mode name.
func (m Mode) String() string {
	if m == ModeLine {
		return "line"
	}
	return "percentage"
}

// RestoreTarget is the instruction used to put the viewport back after its content is replaced.
type RestoreTarget struct {
	Mode Mode

	// Line is set when Mode is ModeLine.
	Line int

	// Percentage is set when Mode is ModePercentage.
	Percentage float64
}

// String formats the target for logs.
func (r RestoreTarget) String() string {
	if r.Mode == ModeLine {
		return fmt.Sprintf("line %d", r.Line)
	}
	return fmt.Sprintf("%.2f%%", r.Percentage)
}

// Tracker remembers where the viewport should be. Exactly one of the pinned line and the
// pinned percentage is meaningful at a time. The zero value is pinned at 0%.
type Tracker struct {
	mode       Mode
	line       int
	percentage float64
}

// EnterLineMode pins the tracker to line.
func (t *Tracker) EnterLineMode(line int) {
	t.mode = ModeLine
	t.line = line
	t.percentage = 0
}

// EnterPercentageMode pins the tracker to offset as a percentage of height and returns it.
// A height below one is treated as one, so content that has not been laid out yet does not
// divide by zero.
func (t *Tracker) EnterPercentageMode(offset, height float64) float64 {
	t.mode = ModePercentage
	t.line = 0
	t.percentage = offset * 100 / math.Max(height, 1)
	return t.percentage
}

// Mode returns the authoritative mode.
func (t *Tracker) Mode() Mode {
	return t.mode
}

// Line returns the pinned line and whether the tracker is in line mode.
func (t *Tracker) Line() (int, bool) {
	return t.line, t.mode == ModeLine
}

// Percentage returns the pinned percentage and whether the tracker is in percentage mode.
func (t *Tracker) Percentage() (float64, bool) {
	return t.percentage, t.mode == ModePercentage
}

// CurrentRestoreTarget returns the instruction that reapplies the remembered position.
func (t *Tracker) CurrentRestoreTarget() RestoreTarget {
	if t.mode == ModeLine {
		return RestoreTarget{Mode: ModeLine, Line: t.line}
	}
	return RestoreTarget{Mode: ModePercentage, Percentage: t.percentage}
}
