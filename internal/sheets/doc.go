// Package sheets delivers audit rows to Google Sheets.
//
// Delivery is two calls: a Drive files.copy of the template spreadsheet,
// producing a fresh destination so the template itself is never written to,
// followed by a single spreadsheets.values.update carrying all rows against
// a fixed range with value-input mode RAW (values are stored literally, not
// reinterpreted by the backend).
//
// There is deliberately no retry, no partial-write recovery, and no general
// spreadsheet abstraction here: if the update fails after a successful
// copy, the empty copy is left in place for the operator to inspect.
package sheets
