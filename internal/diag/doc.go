// Package diag defines the non-fatal findings produced while refining a
// metadata tree.
//
// # Purpose
//
//   - Carry data-quality signals (code clashes, over-long codes, excluded
//     nodes) from the refinement core to the driver and CLI without aborting
//     the run.
//   - Keep producers decoupled from storage through the Reporter contract.
//
// # Scope
//
// Package diag does no IO. Rendering lives in the CLI; collection lives in
// Bag. Fatal conditions are plain Go errors and never pass through here.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error (severity.go).
//   - Code – stable numeric identifier (codes.go) with a string form such
//     as CODE1001.
//   - Message – short, actionable text.
//   - Path – slash-separated source path of the node concerned.
//   - Value – the offending value (usually an ontology code).
//   - Notes – optional extra context.
//
// Producers use Reporter.Report directly or the ReportBuilder helpers
// (ReportError, ReportWarning, ReportInfo) and chain WithNote before Emit.
package diag
