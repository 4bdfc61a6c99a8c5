package pretty

import (
	"fmt"

	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

// FormatResolution formats the outcome of resolving a source line against a file's index.
// Example: "README.md:14 -> line 12 (#pragma-line-12)".
func (s *Styles) FormatResolution(path string, line, resolved int) string {
	location := s.FilePath.Render(path) + s.Line.Render(fmt.Sprintf(":%d", line))

	switch {
	case resolved == scrollsync.NoTarget:
		return fmt.Sprintf("%s  %s\n", location, s.Warning.Render("no target"))
	case resolved == scrollsync.TopLine:
		return fmt.Sprintf("%s  %s %s\n", location, s.Dim.Render("->"), s.Target.Render("top of document"))
	default:
		anchor := s.Anchor.Render("(#" + scrollsync.AnchorID(resolved) + ")")
		return fmt.Sprintf("%s  %s %s  %s\n",
			location,
			s.Dim.Render("->"),
			s.Target.Render(fmt.Sprintf("line %d", resolved)),
			anchor,
		)
	}
}

// FormatFileError formats an error for a single file.
func (s *Styles) FormatFileError(path string, err error) string {
	return fmt.Sprintf("  %s  %s  %s\n",
		s.FilePath.Render(path),
		s.Error.Render("error"),
		s.Message.Render(err.Error()),
	)
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, blocks int) string {
	header := s.FilePath.Render(path)
	if blocks > 0 {
		noun := "blocks"
		if blocks == 1 {
			noun = "block"
		}
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", blocks, noun))
	}
	return header
}
