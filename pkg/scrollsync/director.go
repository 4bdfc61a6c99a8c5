package scrollsync

type instructionKind uint8

const (
	instructSetOffset instructionKind = iota
	instructReveal
)

type instruction struct {
	kind   instructionKind
	offset float64
	anchor string
}

// Option configures a Director.
type Option func(*Director)

// WithZoom sets the zoom factor applied after every load. Zero or negative leaves zoom alone.
func WithZoom(factor float64) Option {
	return func(d *Director) {
		d.zoom = factor
	}
}

// WithIndex sets the initial block index.
func WithIndex(idx *Index) Option {
	return func(d *Director) {
		d.index = idx
	}
}

// WithReady marks the viewport as already loaded, so instructions are sent immediately.
func WithReady() Option {
	return func(d *Director) {
		d.ready = true
	}
}

// Director turns editor and viewport events into scroll instructions.
//
// While the viewport is loading, the newest requested instruction is held and sent once
// the load completes. Every instruction positions the viewport absolutely, so an older
// one would be overwritten anyway.
type Director struct {
	viewport Viewport
	mode     ModeSource
	tracker  Tracker
	index    *Index
	zoom     float64

	ready        bool
	awaitingLoad bool
	pending      instruction
	hasPending   bool
}

// NewDirector creates a Director driving viewport. mode is read on every call.
func NewDirector(viewport Viewport, mode ModeSource, opts ...Option) *Director {
	director := &Director{
		viewport: viewport,
		mode:     mode,
	}
	for _, opt := range opts {
		opt(director)
	}
	return director
}

// OnEditorLineChanged follows a caret move to line and returns the resolved line.
// With line sync off it does nothing and returns NoTarget.
func (d *Director) OnEditorLineChanged(line int) int {
	if !d.mode.LineSync() {
		return NoTarget
	}

	resolved := d.index.Resolve(line)
	d.tracker.EnterLineMode(resolved)
	d.scrollToLine(resolved)

	return resolved
}

// OnViewportScrolled records the viewport position after a user scroll.
// With line sync on the pinned line is left untouched. Reports arriving between
// ReplaceContent and OnLoadCompleted are ignored.
func (d *Director) OnViewportScrolled() {
	// Scroll reports during a load come from the content swap, not the user.
	if d.mode.LineSync() || d.awaitingLoad {
		return
	}
	d.tracker.EnterPercentageMode(d.viewport.ScrollOffset(), d.viewport.ContentHeight())
}

// ReplaceContent sends fresh markup to the viewport. A non-nil idx replaces the current index;
// nil keeps it. The viewport counts as loading until OnLoadCompleted.
func (d *Director) ReplaceContent(markup []byte, idx *Index) {
	if idx != nil {
		d.index = idx
	}
	d.ready = false
	d.awaitingLoad = true
	d.viewport.ReplaceContent(markup)
}

// OnLoadCompleted handles the viewport finishing a load. The first completion after
// ReplaceContent applies zoom and the restore target; a held instruction is then sent.
// It returns the restore target that was applied, if any.
func (d *Director) OnLoadCompleted() (RestoreTarget, bool) {
	d.ready = true

	var (
		target  RestoreTarget
		applied bool
	)
	if d.awaitingLoad {
		d.awaitingLoad = false
		if zoomer, ok := d.viewport.(Zoomer); ok && d.zoom > 0 {
			zoomer.SetZoom(d.zoom)
		}
		target = d.tracker.CurrentRestoreTarget()
		d.restore(target)
		applied = true
	}

	if d.hasPending {
		d.send(d.pending)
		d.pending, d.hasPending = instruction{}, false
	}

	return target, applied
}

// Tracker returns the scroll-state tracker.
func (d *Director) Tracker() *Tracker {
	return &d.tracker
}

// Index returns the current block index.
func (d *Director) Index() *Index {
	return d.index
}

// Ready reports whether the viewport has finished loading its content.
func (d *Director) Ready() bool {
	return d.ready
}

// Pending reports whether an instruction is waiting for the load to complete.
func (d *Director) Pending() bool {
	return d.hasPending
}

func (d *Director) restore(target RestoreTarget) {
	if target.Mode == ModeLine {
		d.scrollToLine(target.Line)
		return
	}
	d.send(instruction{
		kind:   instructSetOffset,
		offset: target.Percentage * d.viewport.ContentHeight() / 100,
	})
}

func (d *Director) scrollToLine(line int) {
	switch {
	case line == TopLine:
		d.dispatch(instruction{kind: instructSetOffset, offset: 0})
	case line > NoTarget:
		d.dispatch(instruction{kind: instructReveal, anchor: AnchorID(line)})
	}
}

func (d *Director) dispatch(instr instruction) {
	if !d.ready {
		d.pending, d.hasPending = instr, true
		return
	}
	d.send(instr)
}

func (d *Director) send(instr instruction) {
	switch instr.kind {
	case instructSetOffset:
		d.viewport.SetScrollOffset(instr.offset)
	case instructReveal:
		d.viewport.ScrollElementIntoView(instr.anchor)
	}
}
