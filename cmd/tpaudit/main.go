// Package main provides the entry point for the tpaudit CLI.
//
// tpaudit measures the performance cost of third-party scripts on a web
// page. It loads the page in a headless browser, attributes network and
// main-thread activity to known third-party entities, and delivers the
// results into a copy of a Google Sheets template.
//
// Usage:
//
//	tpaudit audit <url>
//	tpaudit audit --no-upload <url>
//
// See --help for all available options.
package main

// main is the entry point for tpaudit.
func main() {
	Execute()
}
