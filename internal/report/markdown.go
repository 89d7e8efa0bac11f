package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/google/mweb-analysis-tools/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AuditReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeEntries(md, report)
	w.writeDelivery(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AuditReport) {
	md.H1("Third-Party Script Audit")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page URL", "`" + report.URL + "`"},
			{"Audit Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Entities Found", strconv.Itoa(len(report.Entries))},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.AuditReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeEntries writes the per-entity results section.
func (w *MarkdownWriter) writeEntries(md *markdown.Markdown, report *model.AuditReport) {
	md.H2("Third-Party Entities")
	md.PlainText("")

	if len(report.Entries) == 0 {
		md.PlainText("No third-party entities detected.")
		md.PlainText("")
		md.Tip("This page loads no measurable third-party scripts.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Entries))
	for i, e := range report.Entries {
		rows[i] = []string{
			truncateString(e.EntityName, 50),
			string(e.Type),
			strconv.Itoa(e.BlockingTimeMs),
			strconv.Itoa(e.MainThreadTimeMs),
			fmt.Sprintf("%.1f", e.TransferSizeKb),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Entity", "Type", "Blocking (ms)", "Main Thread (ms)", "Transfer (KB)"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, report)
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of blocking time by entity type.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.AuditReport) {
	byType := map[model.EntityType]int{}
	for _, e := range report.Entries {
		byType[e.Type] += e.BlockingTimeMs
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Blocking Time by Entity Type"),
		piechart.WithShowData(true),
	)

	for _, typ := range []model.EntityType{model.TypeAds, model.TypeAnalytics, model.TypeOther} {
		if ms := byType[typ]; ms > 0 {
			chart.LabelAndIntValue(string(typ), uint64(ms))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on total blocking time.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.AuditReport) {
	total := report.TotalBlockingTimeMs()
	switch {
	case total >= 1000:
		md.Cautionf(
			"Third-party scripts block the main thread for %d ms in total. This will noticeably delay interactivity.",
			total,
		)
	case total >= 250:
		md.Warningf(
			"Third-party scripts block the main thread for %d ms in total. Consider deferring or removing the heaviest entities.",
			total,
		)
	case total > 0:
		md.Notef("Third-party blocking time is %d ms in total.", total)
	default:
		md.Tip("No third-party script blocks the main thread beyond the long task threshold.")
	}
	md.PlainText("")
}

// writeDelivery writes the spreadsheet delivery section.
func (w *MarkdownWriter) writeDelivery(md *markdown.Markdown, report *model.AuditReport) {
	md.H2("Spreadsheet Delivery")
	md.PlainText("")

	if report.SpreadsheetID == "" {
		md.PlainText("Results were not delivered to a spreadsheet.")
		md.PlainText("")
		return
	}

	url := "https://docs.google.com/spreadsheets/d/" + report.SpreadsheetID
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Spreadsheet", markdown.Link(report.SpreadsheetID, url)},
			{"Cells Updated", strconv.FormatInt(report.UpdatedCells, 10)},
		},
	})
	md.PlainText("")

	if !report.Delivered {
		md.Warning("The spreadsheet copy was created but the result rows were not written.")
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by tpaudit*")
}
