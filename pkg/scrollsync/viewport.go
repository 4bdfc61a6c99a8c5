package scrollsync

import (
	"context"
	"sync/atomic"

	"github.com/yaklabco/mdsync/pkg/mdast"
)

// Viewport is the scrollable rendered view the Director drives.
// Offsets and heights are in the viewport's own units (CSS pixels for a browser).
type Viewport interface {
	// SetScrollOffset scrolls to an absolute vertical offset.
	SetScrollOffset(offset float64)

	// ScrollOffset returns the current vertical scroll offset.
	ScrollOffset() float64

	// ContentHeight returns the total scrollable height.
	ContentHeight() float64

	// ScrollElementIntoView aligns the element with the given id to the top of the viewport.
	ScrollElementIntoView(id string)

	// ReplaceContent swaps the whole rendered document.
	// The viewport reports completion through Director.OnLoadCompleted.
	ReplaceContent(markup []byte)
}

// Zoomer is implemented by viewports that support a zoom factor.
type Zoomer interface {
	SetZoom(factor float64)
}

// ModeSource reports whether line sync is enabled. It is consulted on every operation.
type ModeSource interface {
	LineSync() bool
}

// ModeFunc adapts a function to ModeSource.
type ModeFunc func() bool

// LineSync calls f.
func (f ModeFunc) LineSync() bool {
	return f()
}

// Switch is a ModeSource that can be toggled from any goroutine.
type Switch struct {
	on atomic.Bool
}

// NewSwitch returns a Switch in the given state.
func NewSwitch(lineSync bool) *Switch {
	s := &Switch{}
	s.on.Store(lineSync)
	return s
}

// LineSync reports the current state.
func (s *Switch) LineSync() bool {
	return s.on.Load()
}

// Set changes the state and returns the previous one.
func (s *Switch) Set(lineSync bool) bool {
	return s.on.Swap(lineSync)
}

// Parser turns Markdown source into a block tree tagged with source lines.
type Parser interface {
	Parse(ctx context.Context, path string, content []byte) (*mdast.FileSnapshot, error)
}

// Renderer turns a parsed snapshot into markup carrying AnchorID element ids.
type Renderer interface {
	Render(ctx context.Context, snapshot *mdast.FileSnapshot) ([]byte, error)
}
