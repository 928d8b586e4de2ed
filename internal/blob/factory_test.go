package blob

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenDefaultsToFilesystem(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	t.Setenv("ESTATECORE_BLOB_DRIVER", "")
	t.Setenv("ESTATECORE_BLOB_FS_ROOT", root)

	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %q, want fs", store.Driver())
	}
	if _, err := store.Put(context.Background(), "probe.txt", strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("put through fs store: %v", err)
	}
}

func TestOpenMemoryDriver(t *testing.T) {
	t.Setenv("ESTATECORE_BLOB_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %q, want memory", store.Driver())
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	t.Setenv("ESTATECORE_BLOB_DRIVER", "s3")
	t.Setenv("ESTATECORE_BLOB_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("expected missing bucket error")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("ESTATECORE_BLOB_DRIVER", "punch-cards")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("expected unknown driver error")
	}
}
