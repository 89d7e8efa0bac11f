package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client wraps the Sheets and Drive services used by the delivery stage.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client. Callers supply credentials and transport
// settings through Google API client options, typically
// option.WithTokenSource from the auth flow.
func NewClient(ctx context.Context, apiOpts []option.ClientOption, opts ...ClientOption) (*Client, error) {
	sheetsSvc, err := sheets.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	driveSvc, err := drive.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	c := &Client{
		sheets: sheetsSvc,
		drive:  driveSvc,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CopyTemplate copies the template spreadsheet and returns the new
// spreadsheet's ID. Rows are only ever written to such copies.
func (c *Client) CopyTemplate(ctx context.Context, templateID, title string) (string, error) {
	f, err := c.drive.Files.Copy(templateID, &drive.File{Name: title}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to copy template spreadsheet %s: %w", templateID, err)
	}

	c.logger.Debug("copied template spreadsheet",
		"template", templateID,
		"spreadsheet", f.Id,
		"title", title,
	)

	return f.Id, nil
}

// UpdateRows writes all rows into the given range of the spreadsheet in a
// single batched call with value-input mode RAW. It returns the number of
// cells the backend reports as updated.
func (c *Client) UpdateRows(ctx context.Context, spreadsheetID, cellRange string, rows [][]any) (int64, error) {
	body := &sheets.ValueRange{Values: rows}

	resp, err := c.sheets.Spreadsheets.Values.
		Update(spreadsheetID, cellRange, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to update range %s of spreadsheet %s: %w", cellRange, spreadsheetID, err)
	}

	c.logger.Debug("updated spreadsheet values",
		"spreadsheet", spreadsheetID,
		"range", cellRange,
		"rows", len(rows),
		"updatedCells", resp.UpdatedCells,
	)

	return resp.UpdatedCells, nil
}
