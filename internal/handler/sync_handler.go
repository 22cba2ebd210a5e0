package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/infra/observability"
	"github.com/zykor/contahub-sync-go/internal/port"
	"github.com/zykor/contahub-sync-go/internal/service"
)

// ============================================================
// 1. Full sync — POST /v1/sync
// ============================================================

type syncRequest struct {
	DataDate string `json:"data_date"`
	BarID    int64  `json:"bar_id"`
}

// syncHandler runs the pipeline for one business date. The response is
// always the structured run result: partial internal failures still come
// back as 200 with their error entries inlined.
func syncHandler(svc *service.SyncService, defaultBarID int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sync")
		defer span.End()

		var req syncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.DataDate == "" {
			writeError(w, http.StatusBadRequest, "data_date is required")
			return
		}
		if _, err := time.Parse("2006-01-02", req.DataDate); err != nil {
			writeError(w, http.StatusBadRequest, "data_date must be yyyy-mm-dd")
			return
		}
		if req.BarID == 0 {
			req.BarID = defaultBarID
		}
		span.SetAttributes(attribute.String("data_date", req.DataDate), attribute.Int64("bar_id", req.BarID))

		result := svc.Run(ctx, req.DataDate, req.BarID)
		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================
// 2. Retroactive backfill — POST /v1/sync/retroactive
// ============================================================

type retroactiveRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	BarID     int64  `json:"bar_id"`
}

func retroactiveHandler(svc *service.SyncService, defaultBarID int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sync/retroactive")
		defer span.End()

		var req retroactiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.StartDate == "" || req.EndDate == "" {
			writeError(w, http.StatusBadRequest, "start_date and end_date are required")
			return
		}
		if req.BarID == 0 {
			req.BarID = defaultBarID
		}

		result := svc.RunRetroactive(ctx, req.StartDate, req.EndDate, req.BarID)
		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================
// 3. Raw snapshot inspection — GET /v1/raw
// ============================================================

func rawSnapshotsHandler(raw port.RawStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/raw")
		defer span.End()

		dataDate := r.URL.Query().Get("data_date")
		if dataDate == "" {
			writeError(w, http.StatusBadRequest, "data_date is required")
			return
		}

		var barID int64
		if v := r.URL.Query().Get("bar_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bar_id must be an integer")
				return
			}
			barID = id
		}

		snaps, err := raw.ListSnapshots(ctx, dataDate, barID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snaps)
	}
}

// ============================================================
// 4. Sync counters — GET /v1/metrics/sync
// ============================================================

func syncMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSyncSnapshot())
	}
}
