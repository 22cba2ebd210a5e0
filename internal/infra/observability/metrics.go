package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/zykor/contahub-sync-go/internal/domain"
)

// Metrics holds all Prometheus metrics for the sync service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	phaseDuration    *prometheus.HistogramVec
	syncRuns         *prometheus.CounterVec
	recordsCollected *prometheus.CounterVec
	recordsInserted  *prometheus.CounterVec
	batchFailures    *prometheus.CounterVec
	externalErrors   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		phaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contahub_phase_duration_seconds",
				Help:    "Duration of pipeline phases (auth, collect, process, run).",
				Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"phase"},
		),
		syncRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contahub_sync_runs_total",
				Help: "Total orchestrator runs by outcome.",
			},
			[]string{"status"},
		),
		recordsCollected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contahub_records_collected_total",
				Help: "Total raw records collected per report type.",
			},
			[]string{"data_type"},
		),
		recordsInserted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contahub_records_inserted_total",
				Help: "Total normalized rows the store confirmed per report type.",
			},
			[]string{"data_type"},
		),
		batchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contahub_sub_batch_failures_total",
				Help: "Total rejected upsert sub-batches per destination table.",
			},
			[]string{"table"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contahub_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
	}
}

// RecordPhaseDuration records the duration of one pipeline phase.
func (m *Metrics) RecordPhaseDuration(phase string, d time.Duration) {
	m.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// IncrSyncRun increments the run counter with a status label.
func (m *Metrics) IncrSyncRun(status string) {
	m.syncRuns.WithLabelValues(status).Inc()
}

// AddRecordsCollected adds to the collected-records counter for a type.
func (m *Metrics) AddRecordsCollected(dataType domain.DataType, n int) {
	m.recordsCollected.WithLabelValues(string(dataType)).Add(float64(n))
}

// AddRecordsInserted adds to the inserted-records counter for a type.
func (m *Metrics) AddRecordsInserted(dataType domain.DataType, n int) {
	m.recordsInserted.WithLabelValues(string(dataType)).Add(float64(n))
}

// IncrBatchFailure increments the rejected sub-batch counter for a table.
func (m *Metrics) IncrBatchFailure(table string) {
	m.batchFailures.WithLabelValues(table).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// SyncSnapshot is a point-in-time view of the cumulative sync counters,
// served by GET /v1/metrics/sync for the admin dashboard.
type SyncSnapshot struct {
	RunsSucceeded    float64            `json:"runs_succeeded"`
	RunsFailed       float64            `json:"runs_failed"`
	RecordsCollected map[string]float64 `json:"records_collected"`
	RecordsInserted  map[string]float64 `json:"records_inserted"`
}

// GetSyncSnapshot gathers current counter values from Prometheus.
func (m *Metrics) GetSyncSnapshot() *SyncSnapshot {
	snap := &SyncSnapshot{
		RunsSucceeded:    getCounterValue(m.syncRuns, "success"),
		RunsFailed:       getCounterValue(m.syncRuns, "error"),
		RecordsCollected: map[string]float64{},
		RecordsInserted:  map[string]float64{},
	}
	for _, t := range domain.DataTypes {
		snap.RecordsCollected[string(t)] = getCounterValue(m.recordsCollected, string(t))
		snap.RecordsInserted[string(t)] = getCounterValue(m.recordsInserted, string(t))
	}
	return snap
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
