package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/mweb-analysis-tools/internal/audit"
	"github.com/google/mweb-analysis-tools/internal/model"
)

// AuditStep runs the browser audit and records the raw per-entity samples
// on the report.
type AuditStep struct {
	// engine performs the measurement.
	engine audit.Engine

	// timeout bounds the whole browser session. Zero means no deadline.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// AuditStepOption configures an AuditStep.
type AuditStepOption func(*AuditStep)

// WithAuditTimeout bounds the browser session for the audit.
func WithAuditTimeout(d time.Duration) AuditStepOption {
	return func(s *AuditStep) {
		s.timeout = d
	}
}

// WithAuditLogger sets a custom logger for the audit step.
func WithAuditLogger(logger *slog.Logger) AuditStepOption {
	return func(s *AuditStep) {
		s.logger = logger
	}
}

// NewAuditStep creates an audit step backed by the given engine.
func NewAuditStep(engine audit.Engine, opts ...AuditStepOption) *AuditStep {
	s := &AuditStep{
		engine: engine,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AuditStep) Name() string {
	return "audit"
}

// Do executes the audit step.
func (s *AuditStep) Do(ctx context.Context, report *model.AuditReport) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	samples, err := s.engine.Run(ctx, report.URL)
	if err != nil {
		return err
	}

	report.Samples = samples
	s.logger.Debug("audit collected samples", "url", report.URL, "entities", len(samples))
	return nil
}

// ShapeStep converts the raw samples into classified entries and
// sheet-ready rows. Every sample produces exactly one entry, in engine
// order; nothing is filtered or deduplicated here, so an unattributed or
// first-party bucket reported by the engine passes straight through.
type ShapeStep struct{}

// NewShapeStep creates a shaping step.
func NewShapeStep() *ShapeStep {
	return &ShapeStep{}
}

// Name returns the step name.
func (s *ShapeStep) Name() string {
	return "shape"
}

// Do executes the shaping step.
func (s *ShapeStep) Do(_ context.Context, report *model.AuditReport) error {
	report.Entries = make([]model.ThirdPartyEntry, 0, len(report.Samples))
	for _, sample := range report.Samples {
		report.Entries = append(report.Entries, model.NewThirdPartyEntry(sample))
	}
	report.Rows = report.RowValues()
	return nil
}

// Deliverer is the spreadsheet backend contract the delivery step needs:
// copy the template, then write all rows in one batched update.
type Deliverer interface {
	// CopyTemplate copies the template spreadsheet and returns the new
	// spreadsheet's ID.
	CopyTemplate(ctx context.Context, templateID, title string) (string, error)

	// UpdateRows writes all rows into the given range and returns the
	// updated cell count.
	UpdateRows(ctx context.Context, spreadsheetID, cellRange string, rows [][]any) (int64, error)
}

// ErrNoDeliverer is returned when the delivery step runs without a
// connected backend.
var ErrNoDeliverer = errors.New("no spreadsheet backend connected")

// DeliverStep writes the shaped rows to a fresh copy of the template
// spreadsheet. The connect function runs at delivery time so that
// credential acquisition (which may block on the interactive prompt)
// happens after the audit, not before it.
type DeliverStep struct {
	// connect obtains the spreadsheet backend, acquiring credentials as
	// a side effect.
	connect func(ctx context.Context) (Deliverer, error)

	// templateID is the Drive file ID of the template spreadsheet.
	templateID string

	// cellRange is the destination range in A1 notation.
	cellRange string

	// logger for structured logging.
	logger *slog.Logger
}

// DeliverStepOption configures a DeliverStep.
type DeliverStepOption func(*DeliverStep)

// WithDeliverLogger sets a custom logger for the delivery step.
func WithDeliverLogger(logger *slog.Logger) DeliverStepOption {
	return func(s *DeliverStep) {
		s.logger = logger
	}
}

// NewDeliverStep creates a delivery step for the given template and range.
func NewDeliverStep(connect func(ctx context.Context) (Deliverer, error), templateID, cellRange string, opts ...DeliverStepOption) *DeliverStep {
	s := &DeliverStep{
		connect:    connect,
		templateID: templateID,
		cellRange:  cellRange,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DeliverStep) Name() string {
	return "deliver"
}

// Do executes the delivery step: connect, copy the template, write all rows
// in one call. A failed copy means no update is ever attempted; a failed
// update leaves the fresh copy empty in place.
func (s *DeliverStep) Do(ctx context.Context, report *model.AuditReport) error {
	if s.connect == nil {
		return ErrNoDeliverer
	}

	deliverer, err := s.connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect spreadsheet backend: %w", err)
	}

	title := fmt.Sprintf("Third-party audit: %s (%s)",
		report.URL, report.StartedAt.Format("2006-01-02"))

	spreadsheetID, err := deliverer.CopyTemplate(ctx, s.templateID, title)
	if err != nil {
		return err
	}
	report.SpreadsheetID = spreadsheetID

	updated, err := deliverer.UpdateRows(ctx, spreadsheetID, s.cellRange, report.RowValues())
	if err != nil {
		return err
	}

	report.UpdatedCells = updated
	report.Delivered = true

	s.logger.Info("rows delivered",
		"spreadsheet", spreadsheetID,
		"range", s.cellRange,
		"rows", len(report.RowValues()),
		"updatedCells", updated,
	)

	return nil
}
