package config

import "errors"

// Configuration validation errors returned by Config.Validate. They are
// package-level sentinels so callers can use errors.Is while still getting
// a human-readable message.
var (
	// ErrNoTemplateID is returned when delivery is enabled but no template
	// spreadsheet ID was configured. Set template_id in the config file or
	// pass --template.
	ErrNoTemplateID = errors.New("no template spreadsheet ID: set template_id in the config file or use --template")

	// ErrNoRange is returned when the destination range is empty.
	ErrNoRange = errors.New("no destination range: set range in the config file or use --range")

	// ErrNoCredentialsFile is returned when delivery is enabled but the
	// credentials file path is empty.
	ErrNoCredentialsFile = errors.New("no credentials file: set credentials_file or use --credentials")

	// ErrInvalidTimeout is returned when the audit timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid audit timeout: must be positive")

	// ErrInvalidSettleDelay is returned when the settle delay is negative.
	// Use 0 to stop collecting at the load event.
	ErrInvalidSettleDelay = errors.New("invalid settle delay: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
