package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdsync/internal/ui/pretty"
	"github.com/yaklabco/mdsync/pkg/runner"
)

func TestFormatSummary_Basic(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		FilesDiscovered: 10,
		FilesRendered:   10,
		FilesUnchanged:  4,
		BlocksIndexed:   87,
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Summary")
	assert.Contains(t, result, "Files discovered:  10")
	assert.Contains(t, result, "Files rendered:    10")
	assert.Contains(t, result, "Unchanged:       4")
	assert.Contains(t, result, "Blocks indexed:    87")
	assert.Contains(t, result, "Export complete")
	assert.NotContains(t, result, "Files failed:")
}

func TestFormatSummary_WithFailures(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		FilesDiscovered: 3,
		FilesRendered:   2,
		FilesErrored:    1,
		BlocksIndexed:   12,
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Files failed:      1")
	assert.Contains(t, result, "Export failed for 1 file")
	assert.NotContains(t, result, "Unchanged:")
}

func TestFormatSummary_NothingDiscovered(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatSummary(runner.Stats{})

	assert.Contains(t, result, "Nothing to export")
}

func TestFormatSummaryOneLine_NoFiles(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "No Markdown files found\n", styles.FormatSummaryOneLine(runner.Stats{}))
}

func TestFormatSummaryOneLine_Rendered(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		FilesDiscovered: 3,
		FilesRendered:   3,
		FilesUnchanged:  1,
		BlocksIndexed:   42,
	}

	assert.Equal(t, "3 files rendered (1 unchanged), 42 blocks indexed\n", styles.FormatSummaryOneLine(stats))
}

func TestFormatSummaryOneLine_Singular(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		FilesDiscovered: 1,
		FilesRendered:   1,
		BlocksIndexed:   1,
	}

	assert.Equal(t, "1 file rendered, 1 block indexed\n", styles.FormatSummaryOneLine(stats))
}

func TestFormatSummaryOneLine_WithFailures(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		FilesDiscovered: 4,
		FilesRendered:   2,
		FilesErrored:    2,
		BlocksIndexed:   9,
	}

	assert.Equal(t, "2 files rendered, 9 blocks indexed, 2 failed\n", styles.FormatSummaryOneLine(stats))
}
