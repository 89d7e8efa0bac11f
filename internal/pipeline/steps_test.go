package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/mweb-analysis-tools/internal/model"
)

// fakeEngine is an audit.Engine returning canned samples.
type fakeEngine struct {
	samples []model.EntitySample
	err     error
	calls   int
	lastURL string
}

// Run implements audit.Engine.
func (e *fakeEngine) Run(_ context.Context, pageURL string) ([]model.EntitySample, error) {
	e.calls++
	e.lastURL = pageURL
	return e.samples, e.err
}

// fakeDeliverer is a Deliverer recording calls.
type fakeDeliverer struct {
	copyErr     error
	updateErr   error
	copyCalls   int
	updateCalls int
	gotTemplate string
	gotRange    string
	gotRows     [][]any
	updated     int64
}

// CopyTemplate implements Deliverer.
func (d *fakeDeliverer) CopyTemplate(_ context.Context, templateID, _ string) (string, error) {
	d.copyCalls++
	d.gotTemplate = templateID
	if d.copyErr != nil {
		return "", d.copyErr
	}
	return "fresh-copy", nil
}

// UpdateRows implements Deliverer.
func (d *fakeDeliverer) UpdateRows(_ context.Context, _ string, cellRange string, rows [][]any) (int64, error) {
	d.updateCalls++
	d.gotRange = cellRange
	d.gotRows = rows
	if d.updateErr != nil {
		return 0, d.updateErr
	}
	return d.updated, nil
}

// connectTo returns a connect function yielding the given deliverer.
func connectTo(d Deliverer, err error) func(ctx context.Context) (Deliverer, error) {
	return func(_ context.Context) (Deliverer, error) {
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// TestAuditStep tests the audit stage.
func TestAuditStep(t *testing.T) {
	t.Parallel()

	t.Run("records engine samples on the report", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{samples: []model.EntitySample{
			{Entity: "Google Analytics", BlockingTime: 10},
		}}
		step := NewAuditStep(engine)

		report := model.NewAuditReport("https://example.com")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if engine.lastURL != "https://example.com" {
			t.Errorf("engine got URL %q", engine.lastURL)
		}
		if len(report.Samples) != 1 || report.Samples[0].Entity != "Google Analytics" {
			t.Errorf("samples not recorded: %+v", report.Samples)
		}
	})

	t.Run("engine failure propagates", func(t *testing.T) {
		t.Parallel()

		engineErr := errors.New("page unreachable")
		step := NewAuditStep(&fakeEngine{err: engineErr})

		report := model.NewAuditReport("https://example.com")
		if err := step.Do(context.Background(), report); !errors.Is(err, engineErr) {
			t.Errorf("expected engine error, got %v", err)
		}
	})

	t.Run("timeout bounds the engine context", func(t *testing.T) {
		t.Parallel()

		var sawDeadline bool
		engine := &deadlineEngine{onRun: func(ctx context.Context) {
			_, sawDeadline = ctx.Deadline()
		}}
		step := NewAuditStep(engine, WithAuditTimeout(time.Minute))

		report := model.NewAuditReport("https://example.com")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !sawDeadline {
			t.Error("expected a deadline on the engine context")
		}
	})
}

// deadlineEngine lets a test inspect the context passed to Run.
type deadlineEngine struct {
	onRun func(ctx context.Context)
}

// Run implements audit.Engine.
func (e *deadlineEngine) Run(ctx context.Context, _ string) ([]model.EntitySample, error) {
	if e.onRun != nil {
		e.onRun(ctx)
	}
	return nil, nil
}

// TestShapeStep tests sample shaping.
func TestShapeStep(t *testing.T) {
	t.Parallel()

	t.Run("one entry and row per sample, order preserved", func(t *testing.T) {
		t.Parallel()

		report := model.NewAuditReport("https://example.com")
		report.Samples = []model.EntitySample{
			{Entity: "Example Ads", BlockingTime: 150.7, MainThreadTime: 300.2, TransferSize: 10240},
			{Entity: "cdn.example.net", TransferSize: 512},
		}

		if err := NewShapeStep().Do(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(report.Entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(report.Entries))
		}
		if report.Entries[0].EntityName != "Example Ads" || report.Entries[1].EntityName != "cdn.example.net" {
			t.Errorf("entry order not preserved: %+v", report.Entries)
		}

		if len(report.Rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(report.Rows))
		}
		want := []any{"https://example.com", "Example Ads", "Ads", 150, 300, 10.0}
		for i, v := range want {
			if report.Rows[0][i] != v {
				t.Errorf("row column %d: expected %v, got %v", i, v, report.Rows[0][i])
			}
		}
	})

	t.Run("no samples yields empty rows", func(t *testing.T) {
		t.Parallel()

		report := model.NewAuditReport("https://example.com")

		if err := NewShapeStep().Do(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(report.Rows) != 0 {
			t.Errorf("expected no rows, got %d", len(report.Rows))
		}
	})
}

// TestDeliverStep tests spreadsheet delivery.
func TestDeliverStep(t *testing.T) {
	t.Parallel()

	// shapedReport returns a report that already went through shaping.
	shapedReport := func(t *testing.T) *model.AuditReport {
		t.Helper()
		report := model.NewAuditReport("https://example.com")
		report.Samples = []model.EntitySample{{Entity: "Example Ads", BlockingTime: 150.7}}
		if err := NewShapeStep().Do(context.Background(), report); err != nil {
			t.Fatal(err)
		}
		return report
	}

	t.Run("copies template then updates the copy", func(t *testing.T) {
		t.Parallel()

		deliverer := &fakeDeliverer{updated: 6}
		step := NewDeliverStep(connectTo(deliverer, nil), "template-1", "Actions!A2:F")

		report := shapedReport(t)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if deliverer.gotTemplate != "template-1" {
			t.Errorf("expected template-1, got %q", deliverer.gotTemplate)
		}
		if deliverer.gotRange != "Actions!A2:F" {
			t.Errorf("expected range Actions!A2:F, got %q", deliverer.gotRange)
		}
		if len(deliverer.gotRows) != 1 {
			t.Errorf("expected 1 row delivered, got %d", len(deliverer.gotRows))
		}
		if report.SpreadsheetID != "fresh-copy" {
			t.Errorf("expected spreadsheet ID recorded, got %q", report.SpreadsheetID)
		}
		if report.UpdatedCells != 6 || !report.Delivered {
			t.Errorf("expected delivery recorded, got cells=%d delivered=%v",
				report.UpdatedCells, report.Delivered)
		}
	})

	t.Run("failed copy prevents any update", func(t *testing.T) {
		t.Parallel()

		copyErr := errors.New("copy rejected")
		deliverer := &fakeDeliverer{copyErr: copyErr}
		step := NewDeliverStep(connectTo(deliverer, nil), "template-1", "Actions!A2:F")

		report := shapedReport(t)
		if err := step.Do(context.Background(), report); !errors.Is(err, copyErr) {
			t.Errorf("expected copy error, got %v", err)
		}
		if deliverer.updateCalls != 0 {
			t.Error("update must not be attempted after a failed copy")
		}
		if report.Delivered {
			t.Error("report must not be marked delivered")
		}
	})

	t.Run("failed update leaves the copy recorded but undelivered", func(t *testing.T) {
		t.Parallel()

		updateErr := errors.New("update rejected")
		deliverer := &fakeDeliverer{updateErr: updateErr}
		step := NewDeliverStep(connectTo(deliverer, nil), "template-1", "Actions!A2:F")

		report := shapedReport(t)
		if err := step.Do(context.Background(), report); !errors.Is(err, updateErr) {
			t.Errorf("expected update error, got %v", err)
		}
		// The orphaned copy is not cleaned up; its ID stays on the report
		// so the operator can find it.
		if report.SpreadsheetID != "fresh-copy" {
			t.Errorf("expected orphaned copy ID recorded, got %q", report.SpreadsheetID)
		}
		if report.Delivered {
			t.Error("report must not be marked delivered")
		}
	})

	t.Run("connect failure aborts before any backend call", func(t *testing.T) {
		t.Parallel()

		connectErr := errors.New("exchange rejected")
		deliverer := &fakeDeliverer{}
		step := NewDeliverStep(connectTo(deliverer, connectErr), "template-1", "Actions!A2:F")

		report := shapedReport(t)
		if err := step.Do(context.Background(), report); !errors.Is(err, connectErr) {
			t.Errorf("expected connect error, got %v", err)
		}
		if deliverer.copyCalls != 0 || deliverer.updateCalls != 0 {
			t.Error("no backend calls may happen when connect fails")
		}
	})

	t.Run("nil connect returns ErrNoDeliverer", func(t *testing.T) {
		t.Parallel()

		step := NewDeliverStep(nil, "template-1", "Actions!A2:F")

		report := shapedReport(t)
		if err := step.Do(context.Background(), report); !errors.Is(err, ErrNoDeliverer) {
			t.Errorf("expected ErrNoDeliverer, got %v", err)
		}
	})
}
