package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/domain"
	"github.com/zykor/contahub-sync-go/internal/infra/observability"
	"github.com/zykor/contahub-sync-go/internal/port"
)

// Collector sequentially pulls the five report types for one business date
// and persists each non-empty response as an immutable raw snapshot.
// Report types are fetched strictly one at a time with a randomized pause
// between calls; the upstream rate limiter is the reason there is no
// parallel fan-out here.
type Collector struct {
	api     port.ReportAPI
	raw     port.RawStore
	delay   port.DelayStrategy
	metrics *observability.Metrics
	logger  *zap.Logger

	minDelay time.Duration
	maxDelay time.Duration
}

// NewCollector creates a Collector. minDelay/maxDelay bound the random
// inter-call pause; the delay strategy decides whether the pause actually
// sleeps, so tests inject NoDelay instead of flipping a flag.
func NewCollector(api port.ReportAPI, raw port.RawStore, delay port.DelayStrategy, minDelay, maxDelay time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Collector {
	return &Collector{
		api:      api,
		raw:      raw,
		delay:    delay,
		metrics:  metrics,
		logger:   logger,
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// interCallPause picks a uniform random pause within [minDelay, maxDelay].
func (c *Collector) interCallPause() time.Duration {
	if c.maxDelay <= c.minDelay {
		return c.minDelay
	}
	return c.minDelay + time.Duration(rand.Int63n(int64(c.maxDelay-c.minDelay)+1))
}

// Collect iterates the fixed report-type order for (dataDate, barID).
// One report type's failure never aborts the others; an empty or malformed
// response is a valid outcome and is skipped silently.
func (c *Collector) Collect(ctx context.Context, token, dataDate string, barID int64) *domain.CollectionOutcome {
	ctx, span := tracer.Start(ctx, "Collector.Collect")
	defer span.End()
	span.SetAttributes(attribute.String("data_date", dataDate), attribute.Int64("bar_id", barID))

	start := time.Now()
	collected := []domain.CollectionResult{}
	errs := []domain.ErrorEntry{}

	for i, dataType := range domain.DataTypes {
		if i > 0 {
			pause := c.interCallPause()
			c.logger.Debug("waiting before next collection",
				zap.String("data_type", string(dataType)),
				zap.Duration("pause", pause),
			)
			if err := c.delay.Wait(ctx, pause); err != nil {
				errs = append(errs, domain.ErrorEntry{
					DataType: dataType,
					Error:    fmt.Sprintf("failed to collect %s: %v", dataType, err),
				})
				continue
			}
		}

		result, err := c.collectOne(ctx, token, dataType, dataDate, barID)
		if err != nil {
			msg := fmt.Sprintf("failed to collect %s: %v", dataType, err)
			c.logger.Error("collection error", zap.String("data_type", string(dataType)), zap.Error(err))
			c.metrics.IncrExternalError("contahub")
			errs = append(errs, domain.ErrorEntry{DataType: dataType, Error: msg})
			continue
		}
		if result == nil {
			c.logger.Info("no data for report type",
				zap.String("data_type", string(dataType)),
				zap.String("data_date", dataDate),
			)
			continue
		}

		c.metrics.AddRecordsCollected(dataType, result.RecordCount)
		collected = append(collected, *result)
		c.logger.Info("report collected",
			zap.String("data_type", string(dataType)),
			zap.Int("record_count", result.RecordCount),
			zap.Int64("raw_data_id", result.ID),
		)
	}

	c.metrics.RecordPhaseDuration("collect", time.Since(start))

	totalRecords := 0
	for _, item := range collected {
		totalRecords += item.RecordCount
	}

	return &domain.CollectionOutcome{
		Collected: collected,
		Errors:    errs,
		Summary: domain.CollectionSummary{
			CollectedCount: len(collected),
			ErrorCount:     len(errs),
			TotalRecords:   totalRecords,
		},
	}
}

// collectOne fetches one report and persists it. A nil result with nil
// error means the response carried no rows.
func (c *Collector) collectOne(ctx context.Context, token string, dataType domain.DataType, dataDate string, barID int64) (*domain.CollectionResult, error) {
	raw, err := c.api.FetchReport(ctx, token, dataType, dataDate)
	if err != nil {
		return nil, err
	}

	recordCount := int(gjson.GetBytes(raw, "list.#").Int())
	if recordCount == 0 {
		return nil, nil
	}

	id, err := c.raw.SaveSnapshot(ctx, &domain.RawSnapshot{
		DataType:    dataType,
		RawJSON:     raw,
		DataDate:    dataDate,
		BarID:       barID,
		RecordCount: recordCount,
	})
	if err != nil {
		return nil, err
	}

	return &domain.CollectionResult{
		ID:          id,
		DataType:    dataType,
		RecordCount: recordCount,
	}, nil
}
