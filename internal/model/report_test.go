package model

import "testing"

// TestAuditReportRowValues verifies that row assembly preserves entry order
// and stamps every row with the audited URL.
func TestAuditReportRowValues(t *testing.T) {
	t.Parallel()

	t.Run("one row per entry, input order preserved", func(t *testing.T) {
		t.Parallel()

		report := NewAuditReport("https://example.com")
		samples := []EntitySample{
			{Entity: "Example Ads", BlockingTime: 1},
			{Entity: "google-analytics.com", BlockingTime: 2},
			{Entity: "cdn.example.net", BlockingTime: 3},
		}
		for _, s := range samples {
			report.Entries = append(report.Entries, NewThirdPartyEntry(s))
		}

		rows := report.RowValues()

		if len(rows) != len(samples) {
			t.Fatalf("expected %d rows, got %d", len(samples), len(rows))
		}
		for i, row := range rows {
			if row[0] != "https://example.com" {
				t.Errorf("row %d: expected source URL in column 0, got %v", i, row[0])
			}
			if row[1] != samples[i].Entity {
				t.Errorf("row %d: expected entity %q, got %v", i, samples[i].Entity, row[1])
			}
		}
	})

	t.Run("prefers pre-built rows", func(t *testing.T) {
		t.Parallel()

		report := NewAuditReport("https://example.com")
		report.Rows = [][]any{{"already", "shaped"}}

		rows := report.RowValues()

		if len(rows) != 1 || rows[0][0] != "already" {
			t.Errorf("expected pre-built rows to be returned, got %v", rows)
		}
	})

	t.Run("no entries yields empty slice", func(t *testing.T) {
		t.Parallel()

		report := NewAuditReport("https://example.com")

		if rows := report.RowValues(); len(rows) != 0 {
			t.Errorf("expected no rows, got %d", len(rows))
		}
	})
}

// TestAuditReportTotals verifies the summary helpers used by report writers.
func TestAuditReportTotals(t *testing.T) {
	t.Parallel()

	report := NewAuditReport("https://example.com")
	report.Entries = []ThirdPartyEntry{
		{BlockingTimeMs: 100, TransferSizeKb: 1.5},
		{BlockingTimeMs: 50, TransferSizeKb: 2.5},
	}

	if got := report.TotalBlockingTimeMs(); got != 150 {
		t.Errorf("expected total blocking time 150, got %d", got)
	}
	if got := report.TotalTransferSizeKb(); got != 4.0 {
		t.Errorf("expected total transfer size 4.0, got %v", got)
	}
}
