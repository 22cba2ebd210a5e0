// Package domain holds the core types of the ContaHub sync pipeline:
// report kinds, raw snapshots, normalized rows and run results.
package domain

import "encoding/json"

// DataType identifies one of the five ContaHub report kinds.
type DataType string

const (
	TypeHourlySales DataType = "fatporhora" // hourly sales
	TypePayments    DataType = "pagamentos" // payments
	TypePeriod      DataType = "periodo"    // period summary per sale
	TypeTiming      DataType = "tempo"      // item production timing
	TypeAnalytical  DataType = "analitico"  // analytical item detail
)

// DataTypes is the fixed collection/processing order. The order carries no
// cross-report dependency; it exists for deterministic logs and tests.
var DataTypes = []DataType{
	TypeHourlySales,
	TypePayments,
	TypePeriod,
	TypeTiming,
	TypeAnalytical,
}

// Table returns the typed destination table for a report kind.
func (d DataType) Table() string {
	return "contahub_" + string(d)
}

// Valid reports whether d is one of the five known report kinds.
func (d DataType) Valid() bool {
	for _, t := range DataTypes {
		if t == d {
			return true
		}
	}
	return false
}

// Credentials is one active row of the credenciais table.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RawSnapshot is one immutable upstream response persisted before any
// normalization. At most one exists per (bar_id, data_type, data_date).
type RawSnapshot struct {
	ID          int64           `json:"id"`
	DataType    DataType        `json:"data_type"`
	RawJSON     json.RawMessage `json:"raw_json"`
	DataDate    string          `json:"data_date"`
	BarID       int64           `json:"bar_id"`
	RecordCount int             `json:"record_count"`
	Processed   bool            `json:"processed"`
	CreatedAt   string          `json:"created_at,omitempty"`
	ProcessedAt string          `json:"processed_at,omitempty"`
}

// CollectionResult records one successfully persisted raw snapshot.
type CollectionResult struct {
	ID          int64    `json:"id"`
	DataType    DataType `json:"data_type"`
	RecordCount int      `json:"record_count"`
}

// ErrorEntry records a per-report-type failure without aborting siblings.
type ErrorEntry struct {
	DataType  DataType `json:"data_type"`
	RawDataID int64    `json:"raw_data_id,omitempty"`
	Error     string   `json:"error"`
}

// CollectionOutcome is the Collector's full result for one business date.
type CollectionOutcome struct {
	Collected []CollectionResult `json:"collected"`
	Errors    []ErrorEntry       `json:"errors"`
	Summary   CollectionSummary  `json:"summary"`
}

// CollectionSummary aggregates a collection phase.
type CollectionSummary struct {
	CollectedCount int `json:"collected_count"`
	ErrorCount     int `json:"error_count"`
	TotalRecords   int `json:"total_records"`
}

// ProcessingResult is the outcome of normalizing and upserting one snapshot.
// InsertedRecords may be below TotalRecords when sub-batches were rejected;
// FailedBatches makes that shortfall observable instead of log-only.
type ProcessingResult struct {
	Success           bool     `json:"success"`
	DataType          DataType `json:"data_type"`
	RawDataID         int64    `json:"raw_data_id"`
	TotalRecords      int      `json:"total_records"`
	InsertedRecords   int      `json:"inserted_records"`
	FailedBatches     int      `json:"failed_batches"`
	ProcessingSeconds float64  `json:"processing_time_seconds"`
	Error             string   `json:"error,omitempty"`
}

// ProcessingOutcome is the processing phase result across all collected types.
type ProcessingOutcome struct {
	Processed []ProcessingResult `json:"processed"`
	Errors    []ErrorEntry       `json:"errors"`
	Summary   ProcessingSummary  `json:"summary"`
}

// ProcessingSummary aggregates a processing phase.
type ProcessingSummary struct {
	ProcessedCount int `json:"processed_count"`
	ErrorCount     int `json:"error_count"`
	TotalRecords   int `json:"total_records"`
}

// SyncRun is the structured result of one orchestrator invocation. It is
// returned to the caller and never persisted; the pipeline's external
// contract is "always a structured result, never an unhandled fault".
type SyncRun struct {
	RunID      string             `json:"run_id"`
	Success    bool               `json:"success"`
	DataDate   string             `json:"data_date"`
	BarID      int64              `json:"bar_id"`
	Collection *CollectionOutcome `json:"collection,omitempty"`
	Processing *ProcessingOutcome `json:"processing,omitempty"`
	Summary    *RunSummary        `json:"summary,omitempty"`
	Error      string             `json:"error,omitempty"`
	Duration   float64            `json:"duration,omitempty"`
}

// RunSummary aggregates one full run.
type RunSummary struct {
	TotalDuration         float64 `json:"total_duration"`
	TypesCollected        int     `json:"types_collected"`
	TypesProcessed        int     `json:"types_processed"`
	TotalRecordsCollected int     `json:"total_records_collected"`
	TotalRecordsProcessed int     `json:"total_records_processed"`
}

// RetroactiveRun is the result of a sequential multi-day backfill.
type RetroactiveRun struct {
	Success   bool       `json:"success"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	BarID     int64      `json:"bar_id"`
	Days      []*SyncRun `json:"days"`
	Summary   RunSummary `json:"summary"`
	Error     string     `json:"error,omitempty"`
}
