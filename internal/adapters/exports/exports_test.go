package exports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"estatecore/internal/adapters/records"
	"estatecore/internal/blob"
	"estatecore/internal/core"
	"estatecore/pkg/domain"
)

func seededService(t *testing.T) *core.Service {
	t.Helper()
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine())
	recs := []domain.RawRecord{
		{Address: "1 1", Area: 100, TotalPrice: 200000, Status: "FOR_SALE"},
		{Address: "1 2", Area: 40, TotalPrice: 80000, Status: "FOR_SALE"},
		{Address: "2 1", Area: 60, TotalPrice: 120000, Status: "SOLD"},
	}
	if _, _, _, err := svc.ImportRecords(context.Background(), recs); err != nil {
		t.Fatalf("ImportRecords: %v", err)
	}
	return svc
}

func waitForTerminal(t *testing.T, worker *Worker, id string) Record {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, ok := worker.Get(id)
		if !ok {
			t.Fatalf("export %s disappeared", id)
		}
		if record.Status == StatusSucceeded || record.Status == StatusFailed {
			return record
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("export %s did not reach a terminal status", id)
	return Record{}
}

func TestWorkerExportsCatalogToBlobStore(t *testing.T) {
	svc := seededService(t)
	store := blob.NewMemory()
	audit := &MemoryAuditLog{}

	worker := NewWorker(svc, store, audit)
	worker.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := worker.Stop(ctx); err != nil {
			t.Fatalf("Stop: %v", err)
		}
	}()

	queued, err := worker.Enqueue(context.Background(), Input{RequestedBy: "ops", Reason: "nightly"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if queued.Status != StatusQueued {
		t.Fatalf("expected queued status, got %s", queued.Status)
	}

	record := waitForTerminal(t, worker, queued.ID)
	if record.Status != StatusSucceeded {
		t.Fatalf("expected success, got %s (%s)", record.Status, record.Error)
	}
	if record.Artifact == nil {
		t.Fatal("expected artifact on completed record")
	}
	if record.Artifact.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", record.Artifact.Rows)
	}
	if record.CompletedAt == nil {
		t.Fatal("expected completion timestamp")
	}

	_, body, err := store.Get(context.Background(), record.Artifact.Key)
	if err != nil {
		t.Fatalf("Get artifact: %v", err)
	}
	defer body.Close()
	recs, diags, err := records.Read(body)
	if err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records in artifact, got %d", len(recs))
	}
	if recs[0].Address != "1 1" {
		t.Fatalf("expected root record first, got %q", recs[0].Address)
	}

	statuses := make([]Status, 0, 3)
	for _, entry := range audit.Entries() {
		if entry.ExportID != queued.ID {
			t.Fatalf("audit entry for unexpected export %s", entry.ExportID)
		}
		if entry.Action != "catalog_export" {
			t.Fatalf("unexpected audit action %q", entry.Action)
		}
		statuses = append(statuses, entry.Status)
	}
	want := []Status{StatusQueued, StatusRunning, StatusSucceeded}
	if len(statuses) != len(want) {
		t.Fatalf("expected %d audit entries, got %d", len(want), len(statuses))
	}
	for i, status := range want {
		if statuses[i] != status {
			t.Fatalf("audit entry %d: expected %s, got %s", i, status, statuses[i])
		}
	}
}

func TestWorkerAppliesKeyPrefix(t *testing.T) {
	svc := seededService(t)
	store := blob.NewMemory()
	worker := NewWorker(svc, store, nil)
	worker.Start()
	defer worker.Stop(context.Background())

	queued, err := worker.Enqueue(context.Background(), Input{KeyPrefix: "tenant-a", RequestedBy: "ops"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	record := waitForTerminal(t, worker, queued.ID)
	if record.Status != StatusSucceeded {
		t.Fatalf("expected success, got %s (%s)", record.Status, record.Error)
	}
	infos, err := store.List(context.Background(), "tenant-a/exports/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 artifact under prefix, got %d", len(infos))
	}
	if infos[0].Key != record.Artifact.Key {
		t.Fatalf("artifact key mismatch: %q vs %q", infos[0].Key, record.Artifact.Key)
	}
}

type failingCatalog struct{}

func (failingCatalog) ExportRecords(context.Context) ([]domain.RawRecord, error) {
	return nil, errors.New("catalog unavailable")
}

func TestWorkerMarksFailureWhenCatalogErrors(t *testing.T) {
	store := blob.NewMemory()
	audit := &MemoryAuditLog{}
	worker := NewWorker(failingCatalog{}, store, audit)
	worker.Start()
	defer worker.Stop(context.Background())

	queued, err := worker.Enqueue(context.Background(), Input{RequestedBy: "ops"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	record := waitForTerminal(t, worker, queued.ID)
	if record.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", record.Status)
	}
	if record.Error == "" {
		t.Fatal("expected failure reason on record")
	}
	if record.Artifact != nil {
		t.Fatal("expected no artifact on failed export")
	}

	entries := audit.Entries()
	if len(entries) == 0 {
		t.Fatal("expected audit entries")
	}
	last := entries[len(entries)-1]
	if last.Status != StatusFailed {
		t.Fatalf("expected failed audit entry, got %s", last.Status)
	}
	if last.Note == "" {
		t.Fatal("expected failure note on audit entry")
	}
}

type rejectingStore struct {
	blob.Store
}

func (rejectingStore) Put(context.Context, string, io.Reader, blob.PutOptions) (blob.Info, error) {
	return blob.Info{}, fmt.Errorf("bucket full")
}

func TestWorkerMarksFailureWhenStoreRejects(t *testing.T) {
	svc := seededService(t)
	worker := NewWorker(svc, rejectingStore{Store: blob.NewMemory()}, nil)
	worker.Start()
	defer worker.Stop(context.Background())

	queued, err := worker.Enqueue(context.Background(), Input{RequestedBy: "ops"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	record := waitForTerminal(t, worker, queued.ID)
	if record.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", record.Status)
	}
}

func TestEnqueueRequiresDependencies(t *testing.T) {
	if _, err := NewWorker(nil, blob.NewMemory(), nil).Enqueue(context.Background(), Input{}); err == nil {
		t.Fatal("expected error without catalog")
	}
	if _, err := NewWorker(seededService(t), nil, nil).Enqueue(context.Background(), Input{}); err == nil {
		t.Fatal("expected error without blob store")
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	svc := seededService(t)
	worker := NewWorker(svc, blob.NewMemory(), nil)
	worker.Start()
	defer worker.Stop(context.Background())

	first, err := worker.Enqueue(context.Background(), Input{RequestedBy: "ops"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitForTerminal(t, worker, first.ID)
	time.Sleep(5 * time.Millisecond)
	second, err := worker.Enqueue(context.Background(), Input{RequestedBy: "ops"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitForTerminal(t, worker, second.ID)

	list := worker.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Fatalf("expected newest export first, got %s", list[0].ID)
	}
}
