package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zykor/contahub-sync-go/internal/domain"
)

// UpsertRecords writes one sub-batch of normalized rows into a typed table
// with insert-or-ignore on idempotency_key (implements port.RecordStore).
// The returned count is what the store confirmed, which is below the input
// length when some rows were idempotent no-ops.
func (c *Client) UpsertRecords(ctx context.Context, table string, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	ctx, span := tracer.Start(ctx, "Supabase.UpsertRecords")
	defer span.End()
	span.SetAttributes(
		attribute.String("table", table),
		attribute.Int("batch_size", len(records)),
	)

	var inserted int

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("%s?on_conflict=idempotency_key", table)
		body, err := c.doPost(ctx, path, records, preferIgnoreDuplicates)
		if err != nil {
			return err
		}

		inserted = 0
		if body != nil {
			var rows []json.RawMessage
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode upsert representation: %w", err)
			}
			inserted = len(rows)
		}
		return nil
	})
	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/" + table, Err: err}
	}

	return inserted, nil
}
