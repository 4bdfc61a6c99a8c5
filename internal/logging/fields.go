package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldDuration   = "duration"

	// Configuration fields.
	FieldFlavor     = "flavor"
	FieldJobs       = "jobs"
	FieldConfigFile = "config_file"

	// Scroll sync fields.
	FieldLine         = "line"
	FieldResolvedLine = "resolved_line"
	FieldAnchor       = "anchor"
	FieldPercentage   = "percentage"
	FieldMode         = "mode"
	FieldTarget       = "target"
	FieldBlocks       = "blocks"
	FieldLineSync     = "line_sync"
	FieldZoom         = "zoom"

	// Preview server fields.
	FieldAddr    = "addr"
	FieldURL     = "url"
	FieldClient  = "client"
	FieldClients = "clients"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesRendered   = "files_rendered"
	FieldFilesUnchanged  = "files_unchanged"
	FieldFilesErrored    = "files_errored"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
