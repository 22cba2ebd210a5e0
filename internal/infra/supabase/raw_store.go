package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zykor/contahub-sync-go/internal/domain"
)

// rawTable is the snapshot table; one row per (bar_id, data_type, data_date).
const rawTable = "contahub_raw_data"

type idRow struct {
	ID int64 `json:"id"`
}

// SaveSnapshot persists a raw snapshot with duplicate-ignore semantics
// (implements port.RawStore). When the tuple already exists the insert is a
// no-op and the existing row id is returned, so re-collection never yields
// a second snapshot.
func (c *Client) SaveSnapshot(ctx context.Context, snap *domain.RawSnapshot) (int64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SaveSnapshot")
	defer span.End()
	span.SetAttributes(
		attribute.String("data_type", string(snap.DataType)),
		attribute.String("data_date", snap.DataDate),
	)

	payload := map[string]any{
		"data_type":    snap.DataType,
		"raw_json":     snap.RawJSON,
		"data_date":    snap.DataDate,
		"bar_id":       snap.BarID,
		"record_count": snap.RecordCount,
		"processed":    false,
		"created_at":   time.Now().UTC().Format(time.RFC3339),
	}

	var id int64

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("%s?on_conflict=bar_id,data_type,data_date", rawTable)
		body, err := c.doPost(ctx, path, payload, preferIgnoreDuplicates)
		if err != nil {
			return err
		}

		var rows []idRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode snapshot insert: %w", err)
			}
		}
		if len(rows) > 0 {
			id = rows[0].ID
			return nil
		}

		// Duplicate was ignored; resolve the existing row id.
		lookup := fmt.Sprintf("%s?select=id&bar_id=eq.%d&data_type=eq.%s&data_date=eq.%s&limit=1",
			rawTable, snap.BarID, snap.DataType, snap.DataDate)
		body, err = c.doGet(ctx, lookup)
		if err != nil {
			return err
		}
		if body == nil {
			return fmt.Errorf("snapshot insert ignored but existing row not found")
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode snapshot lookup: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("snapshot insert ignored but existing row not found")
		}
		id = rows[0].ID
		return nil
	})
	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/raw_data", Err: err}
	}

	return id, nil
}

// GetSnapshot loads one raw snapshot by id (implements port.RawStore).
func (c *Client) GetSnapshot(ctx context.Context, id int64) (*domain.RawSnapshot, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSnapshot")
	defer span.End()
	span.SetAttributes(attribute.Int64("raw_data_id", id))

	var snap *domain.RawSnapshot

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("%s?id=eq.%d&limit=1", rawTable, id)
		body, err := c.doGet(ctx, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return &domain.ErrNotFound{Resource: "raw snapshot", ID: fmt.Sprint(id)}
		}

		var rows []domain.RawSnapshot
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode snapshot: %w", err)
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "raw snapshot", ID: fmt.Sprint(id)}
		}
		snap = &rows[0]
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/raw_data", Err: err}
	}

	return snap, nil
}

// MarkProcessed flips processed=true with a processed_at timestamp
// (implements port.RawStore). Snapshots are otherwise immutable.
func (c *Client) MarkProcessed(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "Supabase.MarkProcessed")
	defer span.End()
	span.SetAttributes(attribute.Int64("raw_data_id", id))

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("%s?id=eq.%d", rawTable, id)
		return c.doPatch(ctx, path, map[string]any{
			"processed":    true,
			"processed_at": time.Now().UTC().Format(time.RFC3339),
		})
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/raw_data", Err: err}
	}
	return nil
}

// ListSnapshots returns snapshot metadata for one business date, optionally
// filtered by bar (implements port.RawStore). raw_json is omitted.
func (c *Client) ListSnapshots(ctx context.Context, dataDate string, barID int64) ([]domain.RawSnapshot, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSnapshots")
	defer span.End()
	span.SetAttributes(attribute.String("data_date", dataDate))

	var snaps []domain.RawSnapshot

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf(
			"%s?select=id,data_type,data_date,bar_id,record_count,processed,created_at,processed_at&data_date=eq.%s&order=data_type.asc",
			rawTable, dataDate)
		if barID > 0 {
			path += fmt.Sprintf("&bar_id=eq.%d", barID)
		}
		body, err := c.doGet(ctx, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			snaps = []domain.RawSnapshot{}
			return nil
		}
		if err := json.Unmarshal(body, &snaps); err != nil {
			return fmt.Errorf("failed to decode snapshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/raw_data", Err: err}
	}

	return snaps, nil
}
