package fs

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"estatecore/internal/blob/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "exports/2026/catalog.csv", strings.NewReader("Area,Price,Status,Address\n100,1,FOR_SALE,1 1\n"), core.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"records": "1"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ETag == "" {
		t.Fatal("expected checksum etag")
	}

	got, rc, err := store.Get(ctx, "exports/2026/catalog.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, _ := io.ReadAll(rc)
	if int64(len(body)) != got.Size {
		t.Fatalf("size mismatch: body %d, info %d", len(body), got.Size)
	}
	if got.ContentType != "text/csv" || got.Metadata["records"] != "1" {
		t.Fatalf("metadata lost: %+v", got)
	}
	if got.ETag != info.ETag {
		t.Fatalf("etag changed across get: %q vs %q", got.ETag, info.ETag)
	}
}

func TestPutRejectsExistingKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k.csv", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "k.csv", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatal("expected already-exists error")
	}
}

func TestKeySanitization(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "  ", "../escape", "/abs/path", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("key %q accepted, want rejection", key)
		}
	}
}

func TestListFiltersByPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"exports/b.csv", "exports/a.csv", "reports/c.txt"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "exports/a.csv" || infos[1].Key != "exports/b.csv" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("listed %d keys, want 3", len(all))
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k.csv", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := store.Delete(ctx, "k.csv")
	if err != nil || !ok {
		t.Fatalf("delete = (%v, %v)", ok, err)
	}
	ok, err = store.Delete(ctx, "k.csv")
	if err != nil || ok {
		t.Fatalf("second delete = (%v, %v), want (false, nil)", ok, err)
	}
	if _, err := store.Head(ctx, "k.csv"); err == nil {
		t.Fatal("head succeeded after delete")
	}
}

func TestPresignURLLocalScheme(t *testing.T) {
	store := newTestStore(t)
	url, err := store.PresignURL(context.Background(), "k.csv", core.SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "http://local.blob/") {
		t.Fatalf("unexpected url: %q", url)
	}
	if _, err := store.PresignURL(context.Background(), "k.csv", core.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatal("expected unsupported method error")
	}
}
