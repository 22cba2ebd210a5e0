package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/domain"
	"github.com/zykor/contahub-sync-go/internal/infra/observability"
	"github.com/zykor/contahub-sync-go/internal/service"
)

func paymentRecords(n int) []domain.Record {
	records := make([]domain.Record, n)
	for i := range records {
		records[i] = &domain.PaymentRow{Vd: fmt.Sprintf("%d", i)}
	}
	return records
}

func TestIdempotencyKey_Deterministic(t *testing.T) {
	key := service.IdempotencyKey(domain.TypePayments, 42, 7)
	if key != "pagamentos_42_7" {
		t.Errorf("unexpected key: %s", key)
	}
	if key != service.IdempotencyKey(domain.TypePayments, 42, 7) {
		t.Error("key must be stable across calls")
	}
	if key == service.IdempotencyKey(domain.TypePayments, 42, 8) {
		t.Error("key must vary with index")
	}
	if key == service.IdempotencyKey(domain.TypePeriod, 42, 7) {
		t.Error("key must vary with data type")
	}
}

func TestUpsert_ChunksIntoSubBatches(t *testing.T) {
	store := newMockRecordStore()
	u := service.NewUpserter(store, observability.NewMetrics(), zap.NewNop())

	records := paymentRecords(2500)
	inserted, failed := u.Upsert(context.Background(), domain.TypePayments, "contahub_pagamentos", 3, 7, records)

	if inserted != 2500 || failed != 0 {
		t.Fatalf("expected 2500 inserted / 0 failed, got %d / %d", inserted, failed)
	}
	if len(store.calls) != 3 {
		t.Fatalf("expected 3 sub-batches, got %d", len(store.calls))
	}
	wantSizes := []int{1000, 1000, 500}
	for i, call := range store.calls {
		if call.size != wantSizes[i] {
			t.Errorf("sub-batch %d: expected %d rows, got %d", i, wantSizes[i], call.size)
		}
		if call.table != "contahub_pagamentos" {
			t.Errorf("sub-batch %d: unexpected table %s", i, call.table)
		}
	}

	// Identity stamped on every row before the write.
	first := records[0].(*domain.PaymentRow)
	last := records[2499].(*domain.PaymentRow)
	if first.IdempotencyKey != "pagamentos_7_0" || last.IdempotencyKey != "pagamentos_7_2499" {
		t.Errorf("unexpected keys: %s / %s", first.IdempotencyKey, last.IdempotencyKey)
	}
	if first.BarID != 3 || last.BarID != 3 {
		t.Errorf("expected bar_id stamped, got %d / %d", first.BarID, last.BarID)
	}
}

func TestUpsert_FailedSubBatchDoesNotAbort(t *testing.T) {
	store := newMockRecordStore()
	store.failCall = 1
	store.failErr = errors.New("HTTP 500")
	u := service.NewUpserter(store, observability.NewMetrics(), zap.NewNop())

	inserted, failed := u.Upsert(context.Background(), domain.TypePayments, "contahub_pagamentos", 3, 7, paymentRecords(2500))

	if len(store.calls) != 3 {
		t.Fatalf("expected all 3 sub-batches attempted, got %d", len(store.calls))
	}
	if inserted != 1500 {
		t.Errorf("expected 1500 inserted, got %d", inserted)
	}
	if failed != 1 {
		t.Errorf("expected 1 failed sub-batch, got %d", failed)
	}
}

func TestUpsert_EmptyBatch(t *testing.T) {
	store := newMockRecordStore()
	u := service.NewUpserter(store, observability.NewMetrics(), zap.NewNop())

	inserted, failed := u.Upsert(context.Background(), domain.TypePayments, "contahub_pagamentos", 3, 7, nil)

	if inserted != 0 || failed != 0 {
		t.Errorf("expected zero counts, got %d / %d", inserted, failed)
	}
	if len(store.calls) != 0 {
		t.Errorf("expected no store calls for empty batch, got %d", len(store.calls))
	}
}
