package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/mdsync/pkg/runner"
	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

// Table formatting constants.
const (
	targetSymbol      = "*"
	tablePadding      = 2
	indexColumnCount  = 4 // LINE, KIND, DEPTH, ANCHOR
	renderColumnCount = 4 // FILE, OUTPUT, BLOCKS, STATUS
	markerColumnWidth = 3
	depthIndent       = 2
	minLineWidth      = 4
	minKindWidth      = 14
	minDepthWidth     = 5
	minAnchorWidth    = 16
	minFileWidth      = 20
	minOutputWidth    = 20
	minBlocksWidth    = 6
	minStatusWidth    = 9
	heavySeparator    = "="
	lightSeparator    = "-"
)

// Render statuses shown in the STATUS column.
const (
	StatusRendered  = "rendered"
	StatusUnchanged = "unchanged"
	StatusFailed    = "error"
)

// IndexRow represents a single block in the index table.
type IndexRow struct {
	Line   string
	Kind   string
	Depth  string
	Anchor string
	Target bool
}

// RenderRow represents a single file in the render table.
type RenderRow struct {
	File   string
	Output string
	Blocks string
	Status string
}

// TableFormatter formats block indexes and render results as styled tables.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatIndex formats a block index as a table. Rows whose line equals target are
// marked; pass scrollsync.NoTarget to mark nothing.
func (t *TableFormatter) FormatIndex(idx *scrollsync.Index, target int) string {
	if idx.Len() == 0 {
		return ""
	}

	rows := IndexRows(idx, target)
	widths := t.indexColumnWidths(rows)

	var builder strings.Builder

	builder.WriteString(t.formatIndexHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths.total(), heavySeparator))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatIndexRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths.total(), heavySeparator))
	builder.WriteString("\n")

	builder.WriteString(t.formatIndexFooter(len(rows), target))
	builder.WriteString("\n")

	return builder.String()
}

// IndexRows converts index entries to table rows. Kinds are indented by depth.
func IndexRows(idx *scrollsync.Index, target int) []IndexRow {
	entries := idx.Entries()
	rows := make([]IndexRow, 0, len(entries))
	for _, entry := range entries {
		indent := strings.Repeat(" ", max(0, entry.Depth-1)*depthIndent)
		rows = append(rows, IndexRow{
			Line:   strconv.Itoa(entry.Line),
			Kind:   indent + entry.Kind.String(),
			Depth:  strconv.Itoa(entry.Depth),
			Anchor: scrollsync.AnchorID(entry.Line),
			Target: target > 0 && entry.Line == target,
		})
	}
	return rows
}

type indexColumnWidths struct {
	line   int
	kind   int
	depth  int
	anchor int
}

func (w indexColumnWidths) total() int {
	return w.line + w.kind + w.depth + w.anchor + (tablePadding * indexColumnCount) + markerColumnWidth
}

// indexColumnWidths determines column widths based on content.
func (t *TableFormatter) indexColumnWidths(rows []IndexRow) indexColumnWidths {
	widths := indexColumnWidths{
		line:   minLineWidth,
		kind:   minKindWidth,
		depth:  minDepthWidth,
		anchor: minAnchorWidth,
	}

	for _, row := range rows {
		widths.line = max(widths.line, len(row.Line))
		widths.kind = max(widths.kind, len(row.Kind))
		widths.depth = max(widths.depth, len(row.Depth))
		widths.anchor = max(widths.anchor, len(row.Anchor))
	}

	// Deeply nested kinds give way first.
	if total := widths.total(); total > t.termWidth {
		widths.kind = max(minKindWidth, widths.kind-(total-t.termWidth))
	}

	return widths
}

func (t *TableFormatter) formatIndexHeader(widths indexColumnWidths) string {
	header := fmt.Sprintf("   %*s  %-*s  %*s  %-*s ",
		widths.line, "LINE",
		widths.kind, "KIND",
		widths.depth, "DEPTH",
		widths.anchor, "ANCHOR",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatIndexRow(row IndexRow, widths indexColumnWidths) string {
	marker := " "
	if row.Target {
		marker = targetSymbol
	}

	content := fmt.Sprintf(" %s %*s  %-*s  %*s  %-*s ",
		marker,
		widths.line, row.Line,
		widths.kind, truncateString(row.Kind, widths.kind),
		widths.depth, row.Depth,
		widths.anchor, row.Anchor,
	)

	if row.Target {
		return t.styles.TableMatch.Render(content)
	}
	return content
}

func (t *TableFormatter) formatIndexFooter(blocks, target int) string {
	noun := "blocks"
	if blocks == 1 {
		noun = "block"
	}
	summary := fmt.Sprintf(" %d %s indexed", blocks, noun)

	if target <= 0 {
		return summary
	}

	legend := fmt.Sprintf("%s = resolved line %d", targetSymbol, target)
	if t.colorEnabled {
		legend = t.styles.TableMatch.Render(targetSymbol) + fmt.Sprintf(" = resolved line %d", target)
	}
	return summary + " | " + t.styles.TableLegend.Render(legend)
}

// FormatRenderTable formats the per-file outcomes of an export run.
func (t *TableFormatter) FormatRenderTable(result *runner.Result) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	rows := RenderRows(result)
	widths := t.renderColumnWidths(rows)

	var builder strings.Builder

	builder.WriteString(t.formatRenderHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths.total(), heavySeparator))
	builder.WriteString("\n")

	for i, row := range rows {
		if i > 0 && row.Status == StatusFailed && rows[i-1].Status != StatusFailed {
			builder.WriteString(t.formatSeparator(widths.total(), lightSeparator))
			builder.WriteString("\n")
		}
		builder.WriteString(t.formatRenderRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths.total(), heavySeparator))
	builder.WriteString("\n")

	return builder.String()
}

// RenderRows converts run outcomes to table rows, failures last.
func RenderRows(result *runner.Result) []RenderRow {
	rows := make([]RenderRow, 0, len(result.Files))
	var failed []RenderRow

	for _, outcome := range result.Files {
		row := RenderRow{
			File:   outcome.Path,
			Output: outcome.Output,
			Blocks: strconv.Itoa(outcome.Blocks),
			Status: StatusRendered,
		}
		switch {
		case outcome.Error != nil:
			row.Status = StatusFailed
			row.Output = outcome.Error.Error()
			row.Blocks = "-"
			failed = append(failed, row)
			continue
		case !outcome.Written:
			row.Status = StatusUnchanged
		}
		rows = append(rows, row)
	}

	return append(rows, failed...)
}

type renderColumnWidths struct {
	file   int
	output int
	blocks int
	status int
}

func (w renderColumnWidths) total() int {
	return w.file + w.output + w.blocks + w.status + (tablePadding * renderColumnCount)
}

func (t *TableFormatter) renderColumnWidths(rows []RenderRow) renderColumnWidths {
	widths := renderColumnWidths{
		file:   minFileWidth,
		output: minOutputWidth,
		blocks: minBlocksWidth,
		status: minStatusWidth,
	}

	for _, row := range rows {
		widths.file = max(widths.file, len(row.File))
		widths.output = max(widths.output, len(row.Output))
		widths.blocks = max(widths.blocks, len(row.Blocks))
		widths.status = max(widths.status, len(row.Status))
	}

	// Reduce output width first, then file width.
	if total := widths.total(); total > t.termWidth {
		widths.output = max(minOutputWidth, widths.output-(total-t.termWidth))
		if total = widths.total(); total > t.termWidth {
			widths.file = max(minFileWidth, widths.file-(total-t.termWidth))
		}
	}

	return widths
}

func (t *TableFormatter) formatRenderHeader(widths renderColumnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %*s  %-*s ",
		widths.file, "FILE",
		widths.output, "OUTPUT",
		widths.blocks, "BLOCKS",
		widths.status, "STATUS",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatRenderRow(row RenderRow, widths renderColumnWidths) string {
	output := truncateFilePath(row.Output, widths.output)
	if row.Status == StatusFailed {
		output = truncateString(row.Output, widths.output)
	}

	content := fmt.Sprintf(" %-*s  %-*s  %*s  %-*s ",
		widths.file, truncateFilePath(row.File, widths.file),
		widths.output, output,
		widths.blocks, row.Blocks,
		widths.status, row.Status,
	)

	switch row.Status {
	case StatusFailed:
		return t.styles.Failure.Render(content)
	case StatusUnchanged:
		return t.styles.Dim.Render(content)
	default:
		return content
	}
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(width int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, width))
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
