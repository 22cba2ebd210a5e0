package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/domain"
	"github.com/zykor/contahub-sync-go/internal/infra/observability"
	"github.com/zykor/contahub-sync-go/internal/infra/resilience"
	"github.com/zykor/contahub-sync-go/internal/port"
)

// SyncService drives one full ingestion run:
// authenticate -> collect -> process -> summarize.
// Its external contract is "always a structured result": every failure is
// folded into the returned SyncRun, nothing escapes as an error or panic.
type SyncService struct {
	auth      *Authenticator
	collector *Collector
	processor *Processor
	delay     port.DelayStrategy
	bulkhead  *resilience.Bulkhead
	metrics   *observability.Metrics
	logger    *zap.Logger

	dayDelay time.Duration
}

// NewSyncService creates the orchestrator. The bulkhead bounds how many
// runs this process drives concurrently; runs for the same
// (bar_id, data_date) race safely on the store's duplicate-ignore upserts.
func NewSyncService(auth *Authenticator, collector *Collector, processor *Processor, delay port.DelayStrategy, bulkhead *resilience.Bulkhead, dayDelay time.Duration, metrics *observability.Metrics, logger *zap.Logger) *SyncService {
	return &SyncService{
		auth:      auth,
		collector: collector,
		processor: processor,
		delay:     delay,
		bulkhead:  bulkhead,
		metrics:   metrics,
		logger:    logger,
		dayDelay:  dayDelay,
	}
}

// Run executes the pipeline for one business date and tenant. The result
// is a named return so the recover path can still hand back a structured
// run instead of letting the panic escape.
func (s *SyncService) Run(ctx context.Context, dataDate string, barID int64) (run *domain.SyncRun) {
	ctx, span := tracer.Start(ctx, "SyncService.Run")
	defer span.End()
	span.SetAttributes(attribute.String("data_date", dataDate), attribute.Int64("bar_id", barID))

	start := time.Now()
	run = &domain.SyncRun{
		RunID:    uuid.NewString(),
		DataDate: dataDate,
		BarID:    barID,
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sync run panicked", zap.Any("panic", r))
			s.failRun(run, start, fmt.Errorf("unexpected fault: %v", r))
		}
	}()

	s.logger.Info("starting full sync",
		zap.String("run_id", run.RunID),
		zap.String("data_date", dataDate),
		zap.Int64("bar_id", barID),
	)

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return s.failRun(run, start, err)
	}
	defer s.bulkhead.Release()

	authStart := time.Now()
	token, err := s.auth.Token(ctx)
	if err != nil {
		return s.failRun(run, start, err)
	}
	s.metrics.RecordPhaseDuration("auth", time.Since(authStart))

	run.Collection = s.collector.Collect(ctx, token, dataDate, barID)
	run.Processing = s.processor.ProcessAll(ctx, run.Collection.Collected)

	elapsed := time.Since(start)
	run.Success = true
	run.Summary = &domain.RunSummary{
		TotalDuration:         roundSeconds(elapsed),
		TypesCollected:        len(run.Collection.Collected),
		TypesProcessed:        len(run.Processing.Processed),
		TotalRecordsCollected: run.Collection.Summary.TotalRecords,
		TotalRecordsProcessed: run.Processing.Summary.TotalRecords,
	}

	s.metrics.RecordPhaseDuration("run", elapsed)
	s.metrics.IncrSyncRun("success")

	s.logger.Info("full sync finished",
		zap.String("run_id", run.RunID),
		zap.Float64("duration_s", run.Summary.TotalDuration),
		zap.Int("records_collected", run.Summary.TotalRecordsCollected),
		zap.Int("records_processed", run.Summary.TotalRecordsProcessed),
		zap.Int("collection_errors", len(run.Collection.Errors)),
		zap.Int("processing_errors", len(run.Processing.Errors)),
	)

	return run
}

func (s *SyncService) failRun(run *domain.SyncRun, start time.Time, err error) *domain.SyncRun {
	run.Success = false
	run.Error = err.Error()
	run.Duration = roundSeconds(time.Since(start))
	s.metrics.IncrSyncRun("error")
	s.logger.Error("full sync failed",
		zap.String("run_id", run.RunID),
		zap.String("data_date", run.DataDate),
		zap.Error(err),
	)
	return run
}

// RunRetroactive backfills a closed date range, one sequential run per day
// with a pause between days. Day failures do not stop the range; the
// aggregate succeeds only when every day did.
func (s *SyncService) RunRetroactive(ctx context.Context, startDate, endDate string, barID int64) *domain.RetroactiveRun {
	ctx, span := tracer.Start(ctx, "SyncService.RunRetroactive")
	defer span.End()
	span.SetAttributes(
		attribute.String("start_date", startDate),
		attribute.String("end_date", endDate),
		attribute.Int64("bar_id", barID),
	)

	result := &domain.RetroactiveRun{
		StartDate: startDate,
		EndDate:   endDate,
		BarID:     barID,
	}

	dates, err := dateRange(startDate, endDate)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	runStart := time.Now()
	result.Success = true

	for i, date := range dates {
		if i > 0 {
			if err := s.delay.Wait(ctx, s.dayDelay); err != nil {
				result.Success = false
				result.Error = err.Error()
				break
			}
		}

		s.logger.Info("retroactive day",
			zap.Int("day", i+1),
			zap.Int("total_days", len(dates)),
			zap.String("data_date", date),
		)

		day := s.Run(ctx, date, barID)
		result.Days = append(result.Days, day)
		if !day.Success {
			result.Success = false
		}
	}

	result.Summary = aggregateDays(result.Days)
	result.Summary.TotalDuration = roundSeconds(time.Since(runStart))
	return result
}

// dateRange expands [start, end] into consecutive yyyy-mm-dd dates.
func dateRange(startDate, endDate string) ([]string, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "start_date", Message: "must be yyyy-mm-dd"}
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "end_date", Message: "must be yyyy-mm-dd"}
	}
	if end.Before(start) {
		return nil, &domain.ErrValidation{Field: "end_date", Message: "must not be before start_date"}
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}

func aggregateDays(days []*domain.SyncRun) domain.RunSummary {
	var sum domain.RunSummary
	for _, day := range days {
		if day.Summary == nil {
			continue
		}
		sum.TypesCollected += day.Summary.TypesCollected
		sum.TypesProcessed += day.Summary.TypesProcessed
		sum.TotalRecordsCollected += day.Summary.TotalRecordsCollected
		sum.TotalRecordsProcessed += day.Summary.TotalRecordsProcessed
	}
	return sum
}
