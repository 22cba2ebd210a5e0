package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/zykor/contahub-sync-go/internal/domain"
)

type mockCredentials struct {
	rows  []domain.Credentials
	err   error
	calls int
}

func (m *mockCredentials) ActiveCredentials(ctx context.Context, service string) ([]domain.Credentials, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

type mockAPI struct {
	loginFunc func(creds domain.Credentials) (string, error)
	fetchFunc func(dataType domain.DataType, dataDate string) (json.RawMessage, error)

	loginCalls int
	fetched    []domain.DataType
	tokens     []string
}

func (m *mockAPI) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	m.loginCalls++
	if m.loginFunc != nil {
		return m.loginFunc(creds)
	}
	return "test-token", nil
}

func (m *mockAPI) FetchReport(ctx context.Context, token string, dataType domain.DataType, dataDate string) (json.RawMessage, error) {
	m.fetched = append(m.fetched, dataType)
	m.tokens = append(m.tokens, token)
	if m.fetchFunc != nil {
		return m.fetchFunc(dataType, dataDate)
	}
	return json.RawMessage(`{"list": []}`), nil
}

type mockRawStore struct {
	mu        sync.Mutex
	nextID    int64
	snapshots map[int64]*domain.RawSnapshot
	processed []int64

	saveErr map[domain.DataType]error
	getErr  error
}

func newMockRawStore() *mockRawStore {
	return &mockRawStore{snapshots: map[int64]*domain.RawSnapshot{}}
}

func (m *mockRawStore) SaveSnapshot(ctx context.Context, snap *domain.RawSnapshot) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveErr[snap.DataType]; err != nil {
		return 0, err
	}
	m.nextID++
	copied := *snap
	copied.ID = m.nextID
	m.snapshots[m.nextID] = &copied
	return m.nextID, nil
}

func (m *mockRawStore) GetSnapshot(ctx context.Context, id int64) (*domain.RawSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	snap, ok := m.snapshots[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "raw snapshot"}
	}
	return snap, nil
}

func (m *mockRawStore) MarkProcessed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, id)
	if snap, ok := m.snapshots[id]; ok {
		snap.Processed = true
	}
	return nil
}

func (m *mockRawStore) ListSnapshots(ctx context.Context, dataDate string, barID int64) ([]domain.RawSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.RawSnapshot
	for _, snap := range m.snapshots {
		if snap.DataDate == dataDate {
			out = append(out, *snap)
		}
	}
	return out, nil
}

type upsertCall struct {
	table string
	size  int
}

type mockRecordStore struct {
	mu    sync.Mutex
	calls []upsertCall
	// failCall rejects the n-th UpsertRecords invocation (0-based).
	failCall int
	failErr  error
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{failCall: -1}
}

func (m *mockRecordStore) UpsertRecords(ctx context.Context, table string, records []domain.Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.calls)
	m.calls = append(m.calls, upsertCall{table: table, size: len(records)})
	if idx == m.failCall {
		return 0, m.failErr
	}
	return len(records), nil
}

// recordingDelay counts waits without sleeping.
type recordingDelay struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (d *recordingDelay) Wait(ctx context.Context, dur time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waits = append(d.waits, dur)
	return nil
}
