package preview

import (
	"sync"

	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

// BrowserViewport drives connected browsers through a Hub. Scroll metrics are the
// values last reported by a browser.
type BrowserViewport struct {
	hub *Hub

	mu     sync.Mutex
	offset float64
	height float64
}

var (
	_ scrollsync.Viewport = (*BrowserViewport)(nil)
	_ scrollsync.Zoomer   = (*BrowserViewport)(nil)
)

// NewBrowserViewport creates a viewport broadcasting through hub.
func NewBrowserViewport(hub *Hub) *BrowserViewport {
	return &BrowserViewport{hub: hub}
}

// SetScrollOffset scrolls every browser to offset pixels.
func (v *BrowserViewport) SetScrollOffset(offset float64) {
	v.mu.Lock()
	v.offset = offset
	v.mu.Unlock()

	v.hub.Broadcast(Command{Type: CommandScrollTo, Offset: &offset})
}

// ScrollOffset returns the last known vertical offset.
func (v *BrowserViewport) ScrollOffset() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// ContentHeight returns the last reported document height.
func (v *BrowserViewport) ContentHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// ScrollElementIntoView reveals the element with the given id.
func (v *BrowserViewport) ScrollElementIntoView(id string) {
	v.hub.Broadcast(Command{Type: CommandReveal, Anchor: id})
}

// ReplaceContent swaps the rendered document.
func (v *BrowserViewport) ReplaceContent(markup []byte) {
	v.hub.Broadcast(Command{Type: CommandContent, HTML: string(markup)})
}

// SetZoom applies a zoom factor.
func (v *BrowserViewport) SetZoom(factor float64) {
	v.hub.Broadcast(Command{Type: CommandZoom, Zoom: factor})
}

// Report records metrics sent by a browser. Negative values are clamped to zero.
func (v *BrowserViewport) Report(offset, height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.offset = max(offset, 0)
	v.height = max(height, 0)
}
