// Package tasks runs long operations over saved comparisons with real-time progress reporting.
//
// # Bulk Export
//
// [BulkExport] writes every given [models.ComparisonRecord] to an output directory using a worker pool:
//   - A producer feeds records to the workers, pacing them with a rate limiter when cover art is downloaded
//   - Each worker renders one comparison through the formatter package
//   - Partial failures are collected rather than aborting the run
//   - An export_manifest.json summarizing every result is written last
//
// # Progress Reporting
//
// Operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters and a message for display.
// Updates use select with default to prevent blocking, so a nil or slow consumer never stalls an export.
package tasks
