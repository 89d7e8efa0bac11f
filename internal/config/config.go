package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultRange is the cell range of the destination sheet that
	// receives the audit rows. The template spreadsheet has a header row
	// in row 1 of the "Actions" tab; data starts at A2. Columns A..F hold
	// {URL, entity, type, blocking ms, main-thread ms, transfer KB}.
	DefaultRange = "Actions!A2:F"

	// DefaultCredentialsFile is the OAuth client descriptor read from the
	// working directory. Downloaded from the Google Cloud console for an
	// "installed application" client.
	DefaultCredentialsFile = "credentials.json"

	// DefaultTokenFile caches the OAuth token between runs. One credential
	// slot per installation; overwritten whenever a new token is obtained.
	DefaultTokenFile = "token.json"

	// DefaultAuditTimeout bounds the whole browser session for one page.
	// Heavy ad-laden pages can take tens of seconds to settle, so this is
	// generous; a page that exceeds it fails the run.
	DefaultAuditTimeout = 90 * time.Second

	// DefaultSettleDelay is how long the engine keeps collecting after the
	// load event fires. Third-party tags typically inject further requests
	// well past onload; ten seconds captures the bulk of them.
	DefaultSettleDelay = 10 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "tpaudit"
)

// DefaultScopes are the OAuth scopes requested during authorization:
// spreadsheet read/write for the values update, drive.file for copying the
// template into a new spreadsheet.
func DefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/spreadsheets",
		"https://www.googleapis.com/auth/drive.file",
	}
}

// Config holds all configuration options for tpaudit. It is populated from
// defaults, then the optional YAML config file, then CLI flags, and passed
// through the application by value semantics rather than global state, so
// tests can substitute a fake template ID or range.
type Config struct {
	// URL is the page to audit. Must begin with "http"; no further
	// well-formedness checking is done here. A malformed but
	// http-prefixed URL is passed to the browser, whose failure governs.
	URL string

	// TemplateID is the Drive file ID of the template spreadsheet. Each
	// run copies this template and writes rows into the copy; the
	// template itself is never written to.
	TemplateID string

	// Range is the A1-notation range of the destination sheet that
	// receives the rows, e.g. "Actions!A2:F".
	Range string

	// Scopes are the OAuth scopes requested during authorization.
	Scopes []string

	// CredentialsFile is the path to the OAuth client descriptor.
	CredentialsFile string

	// TokenFile is the path of the on-disk token cache.
	TokenFile string

	// ChromePath overrides the Chrome/Chromium executable to launch.
	// Empty means let the browser library find one.
	ChromePath string

	// Headless controls whether the browser runs without a window.
	Headless bool

	// AuditTimeout bounds the whole browser session for one page.
	AuditTimeout time.Duration

	// SettleDelay is how long to keep collecting after the load event.
	SettleDelay time.Duration

	// NoUpload skips credential acquisition and spreadsheet delivery;
	// the shaped rows are only reported locally.
	NoUpload bool

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONReport selects JSON report output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output. Mutually exclusive
	// with JSONReport.
	MarkdownReport bool

	// ReportFile, when set, receives the report instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit config file path from the --config
	// flag. Empty means search the standard locations.
	ConfigFilePath string
}

// NewConfig creates a Config with default values. The template ID has no
// default; it must come from the config file or the --template flag.
func NewConfig() *Config {
	return &Config{
		Range:           DefaultRange,
		Scopes:          DefaultScopes(),
		CredentialsFile: DefaultCredentialsFile,
		TokenFile:       DefaultTokenFile,
		Headless:        true,
		AuditTimeout:    DefaultAuditTimeout,
		SettleDelay:     DefaultSettleDelay,
	}
}

// XDGConfigDir returns the XDG config directory for tpaudit.
// On Linux: ~/.config/tpaudit
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration once after flag parsing, before any
// browser or network activity. It returns the first problem found.
// URL prefix checking is deliberately not done here: the audit command
// handles a missing or non-http argument as a usage condition instead.
func (c *Config) Validate() error {
	if c.AuditTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SettleDelay < 0 {
		return ErrInvalidSettleDelay
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if !c.NoUpload {
		if c.TemplateID == "" {
			return ErrNoTemplateID
		}
		if c.Range == "" {
			return ErrNoRange
		}
		if c.CredentialsFile == "" {
			return ErrNoCredentialsFile
		}
	}
	return nil
}
