// Package model defines the core data structures used throughout tpaudit.
//
// This package contains the following main types:
//   - EntitySample: Raw per-entity measurements from the audit engine
//   - ThirdPartyEntry: A shaped, classified audit result
//   - AuditReport: The accumulated state of one audit run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (audit, pipeline, report) need to use these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
