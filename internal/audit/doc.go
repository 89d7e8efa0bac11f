// Package audit runs the browser-side performance measurement.
//
// The Engine interface hides the browser behind a single call: given a page
// URL it returns per-entity third-party measurements (blocking time,
// main-thread time, transfer size). ChromeEngine is the production
// implementation; it launches a fresh headless Chrome over the DevTools
// protocol, watches network traffic while the page loads and settles, reads
// buffered long-task timing entries from the page, and aggregates both by
// the registrable domain of the originating request.
//
// The browser process is owned exclusively by one Run call and is released
// on every exit path, including audit failures.
package audit
