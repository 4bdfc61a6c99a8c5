package scrollsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/mdsync/pkg/mdast"
)

// Session connects a document to a Director: it owns the render pipeline and exposes the two
// operations a host editor calls.
type Session struct {
	path     string
	parser   Parser
	renderer Renderer
	director *Director

	snapshot *mdast.FileSnapshot
	markup   []byte
}

// NewSession creates a session for the document at path.
func NewSession(path string, parser Parser, renderer Renderer, director *Director) *Session {
	return &Session{
		path:     path,
		parser:   parser,
		renderer: renderer,
		director: director,
	}
}

// UpdatePosition reports a caret move to line and returns the resolved line.
func (s *Session) UpdatePosition(line int) int {
	return s.director.OnEditorLineChanged(line)
}

// UpdateContent parses and renders source, rebuilds the block index and replaces the viewport
// content. The remembered position is reapplied when the viewport reports the load.
//
// A parse or render failure replaces the content with error markup and keeps the previous
// index; the failure is returned wrapped in ErrParse or ErrRender. Context cancellation
// leaves the viewport untouched.
func (s *Session) UpdateContent(ctx context.Context, source []byte) error {
	snapshot, err := s.parser.Parse(ctx, s.path, source)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("%w: %w", ErrParse, err))
	}

	markup, err := s.renderer.Render(ctx, snapshot)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("%w: %w", ErrRender, err))
	}

	s.snapshot = snapshot
	s.markup = markup
	s.director.ReplaceContent(markup, BuildIndex(snapshot.Root))

	return nil
}

// Refresh resends the last markup without reparsing, for example to a newly attached viewport.
// It reports whether there was anything to send.
func (s *Session) Refresh() bool {
	if s.markup == nil {
		return false
	}
	s.director.ReplaceContent(s.markup, nil)
	return true
}

// Path returns the document path.
func (s *Session) Path() string {
	return s.path
}

// Snapshot returns the last successfully parsed snapshot, or nil.
func (s *Session) Snapshot() *mdast.FileSnapshot {
	return s.snapshot
}

// Markup returns the markup last sent to the viewport.
func (s *Session) Markup() []byte {
	return s.markup
}

// Director returns the session's director.
func (s *Session) Director() *Director {
	return s.director
}

func (s *Session) fail(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return err
	}

	s.markup = ErrorMarkup(err)
	s.director.ReplaceContent(s.markup, nil)

	return err
}
