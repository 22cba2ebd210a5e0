// Package port defines the interfaces between the sync services and their
// external collaborators (ContaHub API, Supabase stores, delay strategy).
package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zykor/contahub-sync-go/internal/domain"
)

// CredentialsSource loads the stored upstream credentials for a service.
type CredentialsSource interface {
	// ActiveCredentials returns the credential rows with servico=service and
	// ativo=true. The authenticator requires exactly one.
	ActiveCredentials(ctx context.Context, service string) ([]domain.Credentials, error)
}

// ReportAPI is the upstream ContaHub report API.
type ReportAPI interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	// FetchReport returns the raw response body for one report type and
	// business date. The token is threaded explicitly per call.
	FetchReport(ctx context.Context, token string, dataType domain.DataType, dataDate string) (json.RawMessage, error)
}

// RawStore persists and retrieves raw snapshots.
type RawStore interface {
	// SaveSnapshot inserts a snapshot with duplicate-ignore semantics on
	// (bar_id, data_type, data_date) and returns the row id. Re-collection
	// of an existing tuple returns the existing id, never a second row.
	SaveSnapshot(ctx context.Context, snap *domain.RawSnapshot) (int64, error)
	// GetSnapshot loads one snapshot by id.
	GetSnapshot(ctx context.Context, id int64) (*domain.RawSnapshot, error)
	// MarkProcessed flips processed=true and stamps processed_at.
	MarkProcessed(ctx context.Context, id int64) error
	// ListSnapshots returns snapshot metadata (raw_json omitted) for one
	// business date, optionally filtered by bar.
	ListSnapshots(ctx context.Context, dataDate string, barID int64) ([]domain.RawSnapshot, error)
}

// RecordStore writes normalized rows into a typed table.
type RecordStore interface {
	// UpsertRecords writes one sub-batch with insert-or-ignore semantics on
	// idempotency_key and returns the number of rows the store confirmed.
	UpsertRecords(ctx context.Context, table string, records []domain.Record) (int, error)
}

// DelayStrategy abstracts the inter-call waits so tests can substitute a
// zero-delay implementation without disabling production code paths.
type DelayStrategy interface {
	Wait(ctx context.Context, d time.Duration) error
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
