package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/domain"
	"github.com/zykor/contahub-sync-go/internal/infra/observability"
	"github.com/zykor/contahub-sync-go/internal/port"
)

// maxSubBatch is the PostgREST insert ceiling per request.
const maxSubBatch = 1000

// Upserter writes normalized rows idempotently in sub-batches. A rejected
// sub-batch is counted and skipped, never aborting the remaining ones:
// partial success within one report type is an expected outcome and is
// surfaced through the returned counts.
type Upserter struct {
	store   port.RecordStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewUpserter creates an Upserter.
func NewUpserter(store port.RecordStore, metrics *observability.Metrics, logger *zap.Logger) *Upserter {
	return &Upserter{store: store, metrics: metrics, logger: logger}
}

// IdempotencyKey derives the uniqueness token for one normalized row.
// It is a pure function of (data_type, raw snapshot id, in-batch index) so
// a retried write of the same logical row collides with the original and
// is ignored instead of duplicating it.
func IdempotencyKey(dataType domain.DataType, rawID int64, index int) string {
	return fmt.Sprintf("%s_%d_%d", dataType, rawID, index)
}

// Upsert stamps every record with its tenant and idempotency identity,
// chunks the batch into sub-batches of at most 1000 rows and writes each
// with insert-or-ignore on idempotency_key. It returns the count of rows
// the store confirmed and the count of rejected sub-batches.
func (u *Upserter) Upsert(ctx context.Context, dataType domain.DataType, table string, barID, rawID int64, records []domain.Record) (inserted, failedBatches int) {
	ctx, span := tracer.Start(ctx, "Upserter.Upsert")
	defer span.End()
	span.SetAttributes(
		attribute.String("table", table),
		attribute.Int("records", len(records)),
	)

	for i, r := range records {
		r.SetIdentity(barID, IdempotencyKey(dataType, rawID, i))
	}

	for offset := 0; offset < len(records); offset += maxSubBatch {
		end := offset + maxSubBatch
		if end > len(records) {
			end = len(records)
		}
		subBatch := records[offset:end]

		n, err := u.store.UpsertRecords(ctx, table, subBatch)
		if err != nil {
			u.logger.Error("sub-batch rejected",
				zap.String("table", table),
				zap.Int("offset", offset),
				zap.Int("size", len(subBatch)),
				zap.Error(err),
			)
			u.metrics.IncrBatchFailure(table)
			failedBatches++
			continue
		}

		inserted += n
		u.logger.Debug("sub-batch written",
			zap.String("table", table),
			zap.Int("offset", offset),
			zap.Int("inserted", n),
		)
	}

	u.metrics.AddRecordsInserted(dataType, inserted)
	return inserted, failedBatches
}
