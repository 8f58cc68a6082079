// Package output provides consistent CLI output formatting for
// ingestion summaries and search results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/irfanahme/cloud-document-search/internal/docsearch"
	"github.com/irfanahme/cloud-document-search/internal/index"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// BatchSummary prints one batch run: counts first, then every failed
// document with its reason.
func (w *Writer) BatchSummary(summary *docsearch.BatchSummary) {
	w.Successf("processed %d of %d documents (%d failed)",
		summary.Processed, summary.Total, summary.Failed)
	for _, o := range summary.Outcomes {
		if o.Status != docsearch.StatusFailed {
			continue
		}
		w.Statusf("", "failed %s: %s", o.Key, o.Message)
	}
}

// SyncSummary prints one reconciliation pass.
func (w *Writer) SyncSummary(summary *docsearch.SyncSummary) {
	w.Successf("sync complete: %d added, %d removed (store %d, index %d)",
		summary.Added, summary.Removed,
		summary.StoreDocuments, summary.IndexedDocuments)
}

// SearchResults prints scored hits with their highlight fragments.
func (w *Writer) SearchResults(results *index.SearchResults) {
	if len(results.Hits) == 0 {
		w.Statusf("", "no results for %q", results.Query)
		return
	}
	w.Statusf("", "%d results for %q", results.Total, results.Query)
	for i, hit := range results.Hits {
		w.Newline()
		w.Statusf("", "%d. %s (score %.2f)", i+1, hit.Key, hit.Score)
		for _, frag := range hit.Fragments {
			w.Statusf("", "   %s", strings.TrimSpace(frag))
		}
		if hit.URL != "" {
			w.Statusf("", "   %s", hit.URL)
		}
	}
}

// StatusReport prints store and index statistics side by side.
func (w *Writer) StatusReport(report *docsearch.StatusReport) {
	w.Statusf("", "store:  %s (%d objects, %s)",
		report.StoreName, report.StoreObjectCount, formatBytes(report.StoreTotalSize))
	w.Statusf("", "index:  %d documents, %s",
		report.IndexDocumentCount, formatBytes(report.IndexSizeBytes))
	w.Statusf("", "limits: %d MB per document, extensions %s",
		report.MaxFileSizeMB, strings.Join(report.SupportedExtensions, " "))
}

// formatBytes renders a byte count in a human-readable unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
