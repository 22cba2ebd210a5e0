package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/domain"
	"github.com/zykor/contahub-sync-go/internal/infra/observability"
	"github.com/zykor/contahub-sync-go/internal/normalize"
	"github.com/zykor/contahub-sync-go/internal/port"
)

// Processor turns collected raw snapshots into typed rows and writes them.
// Like collection, processing is per-type resilient: one report type's
// failure is recorded and its siblings continue.
type Processor struct {
	raw      port.RawStore
	upserter *Upserter
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(raw port.RawStore, upserter *Upserter, metrics *observability.Metrics, logger *zap.Logger) *Processor {
	return &Processor{raw: raw, upserter: upserter, metrics: metrics, logger: logger}
}

// ProcessAll runs normalize+upsert for every collected snapshot, in the
// collection order.
func (p *Processor) ProcessAll(ctx context.Context, collected []domain.CollectionResult) *domain.ProcessingOutcome {
	ctx, span := tracer.Start(ctx, "Processor.ProcessAll")
	defer span.End()
	span.SetAttributes(attribute.Int("snapshots", len(collected)))

	start := time.Now()
	processed := []domain.ProcessingResult{}
	errs := []domain.ErrorEntry{}

	for _, item := range collected {
		result := p.processOne(ctx, item)
		if result.Success {
			processed = append(processed, result)
			p.logger.Info("snapshot processed",
				zap.String("data_type", string(item.DataType)),
				zap.Int64("raw_data_id", item.ID),
				zap.Int("inserted", result.InsertedRecords),
				zap.Int("failed_batches", result.FailedBatches),
			)
		} else {
			p.logger.Error("snapshot processing failed",
				zap.String("data_type", string(item.DataType)),
				zap.Int64("raw_data_id", item.ID),
				zap.String("error", result.Error),
			)
			errs = append(errs, domain.ErrorEntry{
				DataType:  item.DataType,
				RawDataID: item.ID,
				Error:     fmt.Sprintf("failed to process %s: %s", item.DataType, result.Error),
			})
		}
	}

	p.metrics.RecordPhaseDuration("process", time.Since(start))

	totalRecords := 0
	for _, r := range processed {
		totalRecords += r.InsertedRecords
	}

	return &domain.ProcessingOutcome{
		Processed: processed,
		Errors:    errs,
		Summary: domain.ProcessingSummary{
			ProcessedCount: len(processed),
			ErrorCount:     len(errs),
			TotalRecords:   totalRecords,
		},
	}
}

// processOne normalizes and upserts a single snapshot. Failures are folded
// into the result, never raised.
func (p *Processor) processOne(ctx context.Context, item domain.CollectionResult) domain.ProcessingResult {
	start := time.Now()
	result := domain.ProcessingResult{
		DataType:  item.DataType,
		RawDataID: item.ID,
	}

	fail := func(err error) domain.ProcessingResult {
		result.Success = false
		result.Error = err.Error()
		result.ProcessingSeconds = roundSeconds(time.Since(start))
		return result
	}

	if !item.DataType.Valid() {
		return fail(fmt.Errorf("unsupported data type: %s", item.DataType))
	}

	snap, err := p.raw.GetSnapshot(ctx, item.ID)
	if err != nil {
		return fail(err)
	}

	rows, err := normalize.Rows(snap.DataType, snap.RawJSON)
	if err != nil {
		return fail(err)
	}
	if len(rows) == 0 {
		result.Success = true
		return result
	}

	inserted, failedBatches := p.upserter.Upsert(ctx, snap.DataType, snap.DataType.Table(), snap.BarID, snap.ID, rows)

	// A snapshot with nothing confirmed stays unprocessed and eligible
	// for reprocessing.
	if inserted > 0 {
		if err := p.raw.MarkProcessed(ctx, snap.ID); err != nil {
			return fail(err)
		}
	}

	result.Success = true
	result.TotalRecords = len(rows)
	result.InsertedRecords = inserted
	result.FailedBatches = failedBatches
	result.ProcessingSeconds = roundSeconds(time.Since(start))
	return result
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
