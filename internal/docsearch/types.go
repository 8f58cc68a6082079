// Package docsearch implements the ingestion and reconciliation engine:
// the per-document processing pipeline, the bounded-concurrency batch
// coordinator, and the store-to-index reconciliation.
package docsearch

import (
	"time"
)

// Status classifies a processing outcome.
type Status string

const (
	// StatusSuccess means the document is indexed (freshly or already).
	StatusSuccess Status = "success"
	// StatusSkipped is reserved. The fingerprint short-circuit reports
	// Success, so batch summaries currently always count zero skips.
	StatusSkipped Status = "skipped"
	// StatusFailed means the document could not be indexed this run.
	StatusFailed Status = "failed"
)

// Outcome is the result of processing one document. Per-document
// failures are always captured here and never escape as errors.
type Outcome struct {
	Key         string    `json:"key"`
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completed_at"`
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// BatchSummary aggregates the outcomes of one batch run. Outcomes are
// in completion order, not input order.
type BatchSummary struct {
	Total     int       `json:"total_documents"`
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Outcomes  []Outcome `json:"outcomes"`
}

// SyncSummary reports one reconciliation pass.
type SyncSummary struct {
	StoreDocuments   int       `json:"store_documents"`
	IndexedDocuments int       `json:"indexed_documents"`
	Added            int       `json:"added"`
	Removed          int       `json:"removed"`
	CompletedAt      time.Time `json:"completed_at"`
}

// StatusReport is a snapshot of store and index statistics.
type StatusReport struct {
	StoreName           string   `json:"store_name"`
	StoreObjectCount    int      `json:"store_object_count"`
	StoreTotalSize      int64    `json:"store_total_size"`
	IndexDocumentCount  int      `json:"index_document_count"`
	IndexSizeBytes      int64    `json:"index_size_bytes"`
	SupportedExtensions []string `json:"supported_extensions"`
	MaxFileSizeMB       int      `json:"max_file_size_mb"`
}

// success builds a success outcome stamped with the current time.
func success(key, message string) Outcome {
	return Outcome{
		Key:         key,
		Status:      StatusSuccess,
		Message:     message,
		CompletedAt: time.Now().UTC(),
	}
}

// failed builds a failure outcome stamped with the current time.
func failed(key, message string) Outcome {
	return Outcome{
		Key:         key,
		Status:      StatusFailed,
		Message:     message,
		CompletedAt: time.Now().UTC(),
	}
}
