package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/mdsync/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func pluralFiles(n int) string {
	if n == 1 {
		return wordFile
	}
	return wordFiles
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files rendered (1 unchanged), 42 blocks indexed, 1 failed".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.FilesDiscovered == 0 {
		return s.Dim.Render("No Markdown files found") + "\n"
	}

	var parts []string

	rendered := fmt.Sprintf("%d %s rendered", stats.FilesRendered, pluralFiles(stats.FilesRendered))
	if stats.FilesUnchanged > 0 {
		rendered += s.Dim.Render(fmt.Sprintf(" (%d unchanged)", stats.FilesUnchanged))
	}
	if stats.FilesErrored == 0 {
		rendered = s.Success.Render(rendered)
	}
	parts = append(parts, rendered)

	blockWord := "blocks"
	if stats.BlocksIndexed == 1 {
		blockWord = "block"
	}
	parts = append(parts, fmt.Sprintf("%d %s indexed", stats.BlocksIndexed, blockWord))

	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files discovered:  " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesDiscovered)) + "\n")
	builder.WriteString("  Files rendered:    " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesRendered)) + "\n")

	if stats.FilesUnchanged > 0 {
		builder.WriteString("    Unchanged:       " +
			s.Dim.Render(strconv.Itoa(stats.FilesUnchanged)) + "\n")
	}

	if stats.FilesErrored > 0 {
		builder.WriteString("  Files failed:      " +
			s.Failure.Render(strconv.Itoa(stats.FilesErrored)) + "\n")
	}

	builder.WriteString("\n")
	builder.WriteString("  Blocks indexed:    " +
		s.SummaryValue.Render(strconv.Itoa(stats.BlocksIndexed)) + "\n")
	builder.WriteString("\n")

	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Export failed for " + strconv.Itoa(stats.FilesErrored) + " " + pluralFiles(stats.FilesErrored)))
	case stats.FilesDiscovered == 0:
		builder.WriteString(s.Warning.Render("Nothing to export"))
	default:
		builder.WriteString(s.Success.Render("Export complete"))
	}
	builder.WriteString("\n")

	return builder.String()
}
