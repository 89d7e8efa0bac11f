package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/mweb-analysis-tools/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with aligned columns
// and clear section formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.AuditReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeEntries(&sb, report)
	w.writeDelivery(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with audit information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    THIRD-PARTY SCRIPT AUDIT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Page URL:       %s\n", report.URL))
	sb.WriteString(fmt.Sprintf("Audit Date:     %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Entities Found: %d\n", len(report.Entries)))

	if report.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Status:         ERROR - %s\n", report.ErrorMessage))
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeEntries writes the per-entity results table.
func (w *SimpleWriter) writeEntries(sb *strings.Builder, report *model.AuditReport) {
	if len(report.Entries) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("THIRD-PARTY ENTITIES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Entries) == 0 {
		sb.WriteString("  No third-party entities detected\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  %-32s %-10s %9s %9s %9s\n",
		"ENTITY", "TYPE", "BLOCK ms", "MAIN ms", "XFER KB"))

	for _, e := range report.Entries {
		sb.WriteString(fmt.Sprintf("  %-32s %-10s %9d %9d %9.1f\n",
			truncateString(e.EntityName, 32),
			string(e.Type),
			e.BlockingTimeMs,
			e.MainThreadTimeMs,
			e.TransferSizeKb,
		))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL BLOCKING:  %d ms\n", report.TotalBlockingTimeMs()))
	sb.WriteString(fmt.Sprintf("  TOTAL TRANSFER:  %.1f KB\n", report.TotalTransferSizeKb()))
	sb.WriteString("\n")

	if w.verbose {
		w.writeSteps(sb, report)
	}
}

// writeSteps lists the pipeline steps that ran, in order.
func (w *SimpleWriter) writeSteps(sb *strings.Builder, report *model.AuditReport) {
	if len(report.PerformedSteps) == 0 {
		return
	}
	sb.WriteString("  Steps performed:\n")
	for _, step := range report.PerformedSteps {
		sb.WriteString(fmt.Sprintf("    [+] %s\n", step))
	}
	sb.WriteString("\n")
}

// writeDelivery writes the spreadsheet delivery section.
func (w *SimpleWriter) writeDelivery(sb *strings.Builder, report *model.AuditReport) {
	if report.SpreadsheetID == "" && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SPREADSHEET DELIVERY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.SpreadsheetID == "" {
		sb.WriteString("  Not delivered\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  Spreadsheet: https://docs.google.com/spreadsheets/d/%s\n", report.SpreadsheetID))
	if report.Delivered {
		sb.WriteString(fmt.Sprintf("  Cells Updated: %d\n", report.UpdatedCells))
	} else {
		sb.WriteString("  WARNING: copy created but rows were not written\n")
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by tpaudit\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
