package runner

// FileOutcome is the result of exporting one file.
type FileOutcome struct {
	// Path is the source file.
	Path string

	// Output is the page written for Path.
	Output string

	// Blocks is the number of anchored blocks in the page.
	Blocks int

	// Written is false when the page already held identical content.
	Written bool

	// Error is set if the file could not be exported.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesRendered   int
	FilesUnchanged  int
	FilesErrored    int
	BlocksIndexed   int
}

// Result is the overall runner result.
type Result struct {
	// Files contains one outcome per discovered file, in discovery order.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasFailures reports whether any file failed to export.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

// Errors returns the per-file errors in discovery order.
func (r *Result) Errors() []error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, outcome := range r.Files {
		if outcome.Error != nil {
			errs = append(errs, outcome.Error)
		}
	}
	return errs
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	r.Stats.FilesRendered++
	r.Stats.BlocksIndexed += outcome.Blocks
	if !outcome.Written {
		r.Stats.FilesUnchanged++
	}
}
