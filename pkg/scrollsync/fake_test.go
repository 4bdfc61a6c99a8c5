package scrollsync_test

import (
	"context"
	"fmt"

	"github.com/yaklabco/mdsync/pkg/mdast"
	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

// fakeViewport records every instruction it receives.
type fakeViewport struct {
	offset   float64
	height   float64
	calls    []string
	contents [][]byte
}

func (v *fakeViewport) SetScrollOffset(offset float64) {
	v.offset = offset
	v.calls = append(v.calls, fmt.Sprintf("offset:%g", offset))
}

func (v *fakeViewport) ScrollOffset() float64 { return v.offset }

func (v *fakeViewport) ContentHeight() float64 { return v.height }

func (v *fakeViewport) ScrollElementIntoView(id string) {
	v.calls = append(v.calls, "reveal:"+id)
}

func (v *fakeViewport) ReplaceContent(markup []byte) {
	v.contents = append(v.contents, markup)
	v.calls = append(v.calls, "content")
}

type zoomViewport struct {
	fakeViewport
	zoom float64
}

func (v *zoomViewport) SetZoom(factor float64) {
	v.zoom = factor
	v.calls = append(v.calls, fmt.Sprintf("zoom:%g", factor))
}

// lineParser produces a flat document with one anchored paragraph per listed line.
type lineParser struct {
	lines []int
	err   error
}

func (p *lineParser) Parse(_ context.Context, path string, content []byte) (*mdast.FileSnapshot, error) {
	if p.err != nil {
		return nil, p.err
	}
	snapshot := mdast.NewFileSnapshot(path, content)
	snapshot.Root = mdast.NewDocument()
	for _, line := range p.lines {
		block := mdast.NewBlock(mdast.NodeParagraph, line, line)
		block.Anchored = true
		mdast.AppendChild(snapshot.Root, block)
	}
	mdast.SetFile(snapshot.Root, snapshot)
	return snapshot, nil
}

type stubRenderer struct {
	err error
}

func (r *stubRenderer) Render(_ context.Context, snapshot *mdast.FileSnapshot) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte(fmt.Sprintf("<p>%d blocks</p>", snapshot.BlockCount())), nil
}

func newReadyDirector(viewport scrollsync.Viewport, lineSync bool, lines ...int) *scrollsync.Director {
	return scrollsync.NewDirector(viewport, scrollsync.NewSwitch(lineSync),
		scrollsync.WithIndex(scrollsync.NewIndex(lines...)), scrollsync.WithReady())
}
