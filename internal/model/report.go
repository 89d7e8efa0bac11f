package model

import "time"

// AuditReport accumulates the state of one audit run as it moves through
// the pipeline. Each step reads the fields filled in by earlier steps and
// adds its own.
type AuditReport struct {
	// URL is the audited page, exactly as given on the command line.
	URL string `json:"url"`

	// StartedAt records when the run began.
	StartedAt time.Time `json:"startedAt"`

	// Samples holds the raw per-entity measurements from the audit
	// engine, in the order the engine reported them.
	Samples []EntitySample `json:"samples,omitempty"`

	// Entries holds the shaped results, one per sample, same order.
	Entries []ThirdPartyEntry `json:"entries,omitempty"`

	// Rows holds the sheet-ready serialization of Entries. Row i
	// corresponds to Entries[i].
	Rows [][]any `json:"-"`

	// SpreadsheetID is the identifier of the spreadsheet created by
	// copying the template. Empty until delivery runs, and when the run
	// is local-only.
	SpreadsheetID string `json:"spreadsheetId,omitempty"`

	// UpdatedCells is the cell count reported by the values update call.
	UpdatedCells int64 `json:"updatedCells,omitempty"`

	// Delivered is true once the rows were written to the spreadsheet.
	Delivered bool `json:"delivered"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performedSteps,omitempty"`

	// Error holds the failure that stopped the pipeline, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialized reports.
	ErrorMessage string `json:"error,omitempty"`
}

// NewAuditReport creates an empty report for the given page URL.
func NewAuditReport(url string) *AuditReport {
	return &AuditReport{
		URL:       url,
		StartedAt: time.Now(),
	}
}

// RowValues returns the sheet rows for all entries, building them from
// Entries if the Rows field has not been populated yet.
func (r *AuditReport) RowValues() [][]any {
	if r.Rows != nil {
		return r.Rows
	}
	rows := make([][]any, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, e.Row(r.URL))
	}
	return rows
}

// TotalBlockingTimeMs sums the blocking time across all entries.
func (r *AuditReport) TotalBlockingTimeMs() int {
	var total int
	for _, e := range r.Entries {
		total += e.BlockingTimeMs
	}
	return total
}

// TotalTransferSizeKb sums the transfer size across all entries.
func (r *AuditReport) TotalTransferSizeKb() float64 {
	var total float64
	for _, e := range r.Entries {
		total += e.TransferSizeKb
	}
	return total
}
