package scrollsync

import (
	"errors"
	"html"
)

var (
	// ErrParse wraps parser failures.
	ErrParse = errors.New("parse failed")

	// ErrRender wraps renderer failures.
	ErrRender = errors.New("render failed")
)

// ErrorMarkup renders err as an in-band error block shown in place of the document.
func ErrorMarkup(err error) []byte {
	title := "Preview unavailable"
	switch {
	case errors.Is(err, ErrParse):
		title = "Markdown could not be parsed"
	case errors.Is(err, ErrRender):
		title = "Markdown could not be rendered"
	}

	return []byte(`<div class="mdsync-error" role="alert"><strong>` + html.EscapeString(title) +
		`</strong><pre>` + html.EscapeString(err.Error()) + `</pre></div>`)
}
