// Package main provides the entry point for the tpaudit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for tpaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tpaudit",
		Short: "Third-party script performance auditor",
		Long: `tpaudit measures the performance cost of third-party scripts on a web page.

It loads the page in a headless browser, attributes network transfer and
main-thread long tasks to known third-party entities, and delivers the
results into a copy of a Google Sheets template via OAuth.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
