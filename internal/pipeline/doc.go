// Package pipeline executes the audit-and-report stages in sequence.
//
// The run is strictly linear: audit the page, shape the results into sheet
// rows, deliver the rows to a fresh spreadsheet. Each stage is a Step that
// receives the accumulated AuditReport and either completes and hands its
// result forward or fails and stops the run. There is no partial-result
// salvage and no retry anywhere.
package pipeline
