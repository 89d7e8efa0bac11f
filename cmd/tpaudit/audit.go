package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/google/mweb-analysis-tools/internal/audit"
	"github.com/google/mweb-analysis-tools/internal/auth"
	"github.com/google/mweb-analysis-tools/internal/config"
	logpkg "github.com/google/mweb-analysis-tools/internal/log"
	"github.com/google/mweb-analysis-tools/internal/model"
	"github.com/google/mweb-analysis-tools/internal/pipeline"
	"github.com/google/mweb-analysis-tools/internal/report"
	"github.com/google/mweb-analysis-tools/internal/sheets"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url]",
		Short: "Audit the third-party script cost of a web page",
		Long: `Audit loads a web page in a headless browser and measures the cost of
its third-party scripts.

Network requests and main-thread long tasks are attributed to known
third-party entities and classified as Ads, Analytics, or other. The
resulting rows are written into a fresh copy of a Google Sheets
template, one row per entity:

  {page URL, entity, type, blocking ms, main-thread ms, transfer KB}

Examples:
  # Audit a page and upload results to a spreadsheet copy
  tpaudit audit https://example.com

  # Audit locally without touching Drive or Sheets
  tpaudit audit --no-upload https://example.com

  # Output JSON report to a file
  tpaudit audit --no-upload --json -o report.json https://example.com

  # Use a custom configuration file
  tpaudit audit -c myconfig.yaml https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Spreadsheet delivery flags
	cmd.Flags().StringP("template", "T", "",
		"Drive file ID of the template spreadsheet to copy")
	cmd.Flags().StringP("range", "r", config.DefaultRange,
		"Destination range in A1 notation")
	cmd.Flags().String("credentials", config.DefaultCredentialsFile,
		"Path to the OAuth client descriptor JSON")
	cmd.Flags().String("token", config.DefaultTokenFile,
		"Path of the OAuth token cache")
	cmd.Flags().BoolP("no-upload", "n", false,
		"Skip spreadsheet delivery; report results locally only")

	// Browser flags
	cmd.Flags().String("chrome-path", "",
		"Chrome/Chromium executable to launch (default: auto-detect)")
	cmd.Flags().Bool("headless", true,
		"Run the browser without a window")
	cmd.Flags().DurationP("timeout", "t", config.DefaultAuditTimeout,
		"Upper bound for the whole browser session")
	cmd.Flags().Duration("settle", config.DefaultSettleDelay,
		"How long to keep collecting after the load event")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .tpaudit.yaml in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	// A missing or non-http argument is a usage condition, not an error:
	// print usage on stdout and exit zero.
	if len(args) != 1 || !strings.HasPrefix(args[0], "http") {
		fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
		return nil
	}

	// Build config from defaults, config file, and flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	logger := logpkg.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAudit(ctx, cfg, logger)
}

// buildConfig creates a Config from the config file and cobra command flags.
// Precedence: defaults < config file < flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.URL = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently keep defaults if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags win over the config file, so only apply the ones the user set.
	if cmd.Flags().Changed("template") {
		if cfg.TemplateID, err = cmd.Flags().GetString("template"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("range") {
		if cfg.Range, err = cmd.Flags().GetString("range"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("credentials") {
		if cfg.CredentialsFile, err = cmd.Flags().GetString("credentials"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("token") {
		if cfg.TokenFile, err = cmd.Flags().GetString("token"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("chrome-path") {
		if cfg.ChromePath, err = cmd.Flags().GetString("chrome-path"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("headless") {
		if cfg.Headless, err = cmd.Flags().GetBool("headless"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.AuditTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("settle") {
		if cfg.SettleDelay, err = cmd.Flags().GetDuration("settle"); err != nil {
			return nil, err
		}
	}

	cfg.NoUpload, err = cmd.Flags().GetBool("no-upload")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runAudit executes the audit.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting audit",
		"url", cfg.URL,
		"noUpload", cfg.NoUpload,
		"headless", cfg.Headless,
	)

	// Load the OAuth client descriptor before launching the browser so a
	// missing credentials file fails fast instead of after a long audit.
	var oauthConfig *oauth2.Config
	if !cfg.NoUpload {
		var err error
		oauthConfig, err = auth.LoadCredentials(cfg.CredentialsFile, cfg.Scopes...)
		if err != nil {
			return fmt.Errorf("failed to load credentials: %w", err)
		}
	}

	p := createPipeline(cfg, oauthConfig, logger)

	auditReport := model.NewAuditReport(cfg.URL)

	fmt.Printf("Auditing %s...\n", cfg.URL)
	startTime := time.Now()

	execErr := p.Execute(ctx, auditReport)

	elapsed := time.Since(startTime)
	if execErr == nil {
		fmt.Printf("Audit completed in %s\n\n", elapsed.Round(time.Millisecond))
	} else {
		logger.Error("audit failed", "url", cfg.URL, "error", execErr)
		fmt.Fprintf(os.Stderr, "Audit error for %s: %v\n\n", cfg.URL, execErr)
	}

	// Output whatever was collected, even on failure. A delivery error
	// after a successful browser run still leaves entries worth showing,
	// and the report names the orphaned spreadsheet copy if one exists.
	if err := outputReport(cfg, auditReport); err != nil {
		logger.Error("report failed", "url", cfg.URL, "error", err)
	}

	if auditReport.Delivered {
		fmt.Printf("Updated %d cells in https://docs.google.com/spreadsheets/d/%s\n",
			auditReport.UpdatedCells, auditReport.SpreadsheetID)
	}

	return execErr
}

// createPipeline builds the audit pipeline from the configuration.
// The delivery step is only added when uploading is enabled; its backend
// connection (including the interactive OAuth exchange on first run) is
// deferred until the step actually executes, after the audit succeeded.
func createPipeline(cfg *config.Config, oauthConfig *oauth2.Config, logger *slog.Logger) *pipeline.Pipeline {
	engine := audit.NewChromeEngine(
		audit.WithExecPath(cfg.ChromePath),
		audit.WithHeadless(cfg.Headless),
		audit.WithSettleDelay(cfg.SettleDelay),
		audit.WithLogger(logger),
	)

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddStep(pipeline.NewAuditStep(engine,
		pipeline.WithAuditTimeout(cfg.AuditTimeout),
		pipeline.WithAuditLogger(logger),
	))
	p.AddStep(pipeline.NewShapeStep())

	if !cfg.NoUpload {
		connect := func(ctx context.Context) (pipeline.Deliverer, error) {
			flow := auth.NewFlow(oauthConfig, cfg.TokenFile, auth.WithLogger(logger))
			ts, err := flow.TokenSource(ctx)
			if err != nil {
				return nil, fmt.Errorf("authorization failed: %w", err)
			}
			client, err := sheets.NewClient(ctx,
				[]option.ClientOption{option.WithTokenSource(ts)},
				sheets.WithLogger(logger),
			)
			if err != nil {
				return nil, err
			}
			return client, nil
		}
		p.AddStep(pipeline.NewDeliverStep(connect, cfg.TemplateID, cfg.Range,
			pipeline.WithDeliverLogger(logger),
		))
	}

	return p
}

// outputReport outputs the audit report in the requested format.
func outputReport(cfg *config.Config, auditReport *model.AuditReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions.
		// Reports name the audited page and the destination spreadsheet.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report with all data)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(auditReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(auditReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(auditReport)
	return err
}
